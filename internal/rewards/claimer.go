package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/idhash"
	"zombie-scanner/internal/logging"
	"zombie-scanner/internal/storage"
)

var (
	// ErrNothingToClaim is returned when no unclaimed points remain.
	ErrNothingToClaim = errors.New("nothing to claim")
	// ErrClaimFailed is returned when neither provider accepted the claim.
	ErrClaimFailed = errors.New("claim failed")
)

// PointsSource returns a wallet's current points.
type PointsSource interface {
	Points(ctx context.Context, address string) (domain.PointsResult, error)
}

// Observer is notified of every recorded claim attempt.
type Observer func(rec *domain.ClaimRecord)

// Option configures a Claimer.
type Option func(*Claimer)

// WithLogger sets the logger.
func WithLogger(log logging.Logger) Option {
	return func(c *Claimer) {
		c.log = logging.Component(log, "rewards")
	}
}

// WithPrimary sets the primary provider and the breaker guarding it.
// A nil breaker disables breaking.
func WithPrimary(p Provider, breaker *Breaker) Option {
	return func(c *Claimer) {
		c.primary = p
		c.breaker = breaker
	}
}

// WithObserver registers a claim observer.
func WithObserver(fn Observer) Option {
	return func(c *Claimer) {
		c.observers = append(c.observers, fn)
	}
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option {
	return func(c *Claimer) {
		c.nowFn = now
	}
}

// Claimer converts unclaimed points into a claim. Without a primary provider
// every claim goes to the fallback. Safe for concurrent use; concurrent
// claims for one wallet share a single attempt.
type Claimer struct {
	points    PointsSource
	store     storage.ClaimStore
	fallback  Provider
	primary   Provider
	breaker   *Breaker
	network   domain.Network
	log       logging.Logger
	observers []Observer
	nowFn     func() time.Time
	newID     func() string

	inflight singleflight.Group
}

// NewClaimer creates a Claimer. A nil fallback uses LocalProvider.
func NewClaimer(points PointsSource, store storage.ClaimStore, fallback Provider, network domain.Network, opts ...Option) *Claimer {
	if fallback == nil {
		fallback = NewLocalProvider()
	}
	c := &Claimer{
		points:   points,
		store:    store,
		fallback: fallback,
		network:  network,
		log:      logging.Component(nil, "rewards"),
		nowFn:    time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Claim submits all unclaimed points for address and records the outcome.
// Failed attempts are recorded too and returned with ErrClaimFailed.
func (c *Claimer) Claim(ctx context.Context, address string) (*domain.ClaimRecord, error) {
	v, err, _ := c.inflight.Do(address, func() (interface{}, error) {
		return c.claim(context.WithoutCancel(ctx), address)
	})
	if err != nil {
		return nil, err
	}
	rec := *v.(*domain.ClaimRecord)
	return &rec, nil
}

// History returns recorded claims for address, oldest first.
func (c *Claimer) History(ctx context.Context, address string) ([]*domain.ClaimRecord, error) {
	return c.store.GetByAddress(ctx, address, c.network)
}

// Breaker returns the primary-provider breaker, nil when unset.
func (c *Claimer) Breaker() *Breaker {
	return c.breaker
}

func (c *Claimer) claim(ctx context.Context, address string) (*domain.ClaimRecord, error) {
	log := c.log.WithField("address", address)

	pts, err := c.points.Points(ctx, address)
	if err != nil {
		return nil, err
	}
	claimed, err := c.store.SumClaimedPoints(ctx, address, c.network)
	if err != nil {
		return nil, fmt.Errorf("sum claimed points: %w", err)
	}
	claimable := pts.TotalPoints - claimed
	if claimable <= 0 {
		return nil, ErrNothingToClaim
	}

	req := ClaimRequest{
		Address:        address,
		Network:        c.network,
		Points:         claimable,
		IdempotencyKey: idhash.ComputeClaimKey(address, c.network, claimed, claimable),
	}

	rec := &domain.ClaimRecord{
		ClaimID:        c.newID(),
		IdempotencyKey: req.IdempotencyKey,
		Address:        address,
		Network:        c.network,
		Points:         claimable,
	}

	res, provider, claimErr := c.execute(ctx, log, req)
	rec.Provider = provider
	rec.CreatedAt = c.nowFn().UnixMilli()
	if claimErr != nil {
		msg := claimErr.Error()
		rec.Status = domain.ClaimStatusFailed
		rec.ErrorMessage = &msg
	} else {
		rec.Status = domain.ClaimStatusSuccess
		rec.ClaimedAmount = res.ClaimedAmount
		rec.TxReference = res.TxReference
	}

	if err := c.store.Insert(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Another instance recorded the same claim first.
			return nil, ErrNothingToClaim
		}
		return nil, fmt.Errorf("record claim: %w", err)
	}
	c.notify(rec)

	if claimErr != nil {
		log.WithError(claimErr).Warnf("claim failed")
		return nil, fmt.Errorf("%w: %v", ErrClaimFailed, claimErr)
	}
	log.WithFields(logging.Fields{
		"claim_id": rec.ClaimID,
		"points":   rec.Points,
		"provider": rec.Provider,
	}).Infof("claim recorded")
	return rec, nil
}

// errRejected marks an explicit refusal by a reachable provider.
var errRejected = errors.New("claim rejected")

// execute tries the primary provider and falls back when it is unreachable or
// skipped by the breaker. An explicit rejection from the primary is final.
func (c *Claimer) execute(ctx context.Context, log logging.Logger, req ClaimRequest) (ClaimResult, domain.ClaimProvider, error) {
	if c.primary != nil {
		res, err := c.callPrimary(ctx, req)
		if err == nil || errors.Is(err, errRejected) {
			return res, domain.ClaimProviderPrimary, err
		}
		log.WithError(err).Warnf("primary rewards provider unavailable, using fallback")
	}

	res, err := c.fallback.Claim(ctx, req)
	if err == nil && !res.Success {
		err = rejection(res)
	}
	return res, domain.ClaimProviderLocal, err
}

func (c *Claimer) callPrimary(ctx context.Context, req ClaimRequest) (ClaimResult, error) {
	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			return ClaimResult{}, err
		}
	}

	res, err := c.primary.Claim(ctx, req)
	if c.breaker != nil {
		if err != nil {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err == nil && !res.Success {
		err = rejection(res)
	}
	return res, err
}

func rejection(res ClaimResult) error {
	if res.Message != "" {
		return fmt.Errorf("%w: %s", errRejected, res.Message)
	}
	return errRejected
}

func (c *Claimer) notify(rec *domain.ClaimRecord) {
	for _, fn := range c.observers {
		fn(rec)
	}
}
