package price

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"zombie-scanner/internal/logging"
)

// Jupiter defaults.
const (
	DefaultJupiterEndpoint = "https://api.jup.ag/price/v2"
	DefaultTimeout         = 5 * time.Second

	// maxIDsPerRequest is the Jupiter price API limit on ids per call.
	maxIDsPerRequest = 100
)

// Jupiter reads spot prices from the Jupiter price API v2.
type Jupiter struct {
	httpClient *resty.Client
	log        logging.Logger
}

// NewJupiter creates a Jupiter price source.
func NewJupiter(endpoint string, timeout time.Duration, log logging.Logger) *Jupiter {
	if endpoint == "" {
		endpoint = DefaultJupiterEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logging.Nop()
	}
	log = log.WithField("component", "price")

	httpClient := resty.New()
	httpClient.
		SetTimeout(timeout).
		SetRetryCount(1).
		SetRetryWaitTime(200 * time.Millisecond).
		SetBaseURL(endpoint).AddRetryCondition(func(response *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		if response.StatusCode() == http.StatusBadGateway ||
			response.StatusCode() == http.StatusServiceUnavailable {
			log.Warnf("Response status code is %d - Request: %s - Retrying...", response.StatusCode(), response.Request.URL)
			return true
		}
		return false
	})

	return &Jupiter{httpClient: httpClient, log: log}
}

type jupiterResponse struct {
	Data map[string]*jupiterPrice `json:"data"`
}

type jupiterPrice struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Price string `json:"price"`
}

// Prices returns USD prices for mints, querying in batches.
func (j *Jupiter) Prices(ctx context.Context, mints []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(mints))

	for start := 0; start < len(mints); start += maxIDsPerRequest {
		end := start + maxIDsPerRequest
		if end > len(mints) {
			end = len(mints)
		}
		if err := j.fetch(ctx, mints[start:end], out); err != nil {
			return out, err
		}
	}

	return out, nil
}

func (j *Jupiter) fetch(ctx context.Context, ids []string, out map[string]decimal.Decimal) error {
	var body jupiterResponse
	resp, err := j.httpClient.R().
		SetContext(ctx).
		SetQueryParam("ids", strings.Join(ids, ",")).
		SetResult(&body).
		Get("")
	if err != nil {
		return errors.Wrap(err, "[Prices] request")
	}
	if resp.IsError() {
		return errors.New(fmt.Sprintf("[Prices] Status: %d - Request: %s", resp.StatusCode(), resp.Request.URL))
	}

	for mint, p := range body.Data {
		if p == nil || p.Price == "" {
			continue
		}
		d, err := decimal.NewFromString(p.Price)
		if err != nil {
			j.log.WithField("mint", mint).Debugf("unparsable price %q", p.Price)
			continue
		}
		if d.IsNegative() {
			continue
		}
		out[mint] = d
	}
	return nil
}

var _ Source = (*Jupiter)(nil)
