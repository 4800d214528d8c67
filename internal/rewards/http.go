package rewards

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"zombie-scanner/internal/logging"
)

// DefaultTimeout bounds a single provider request.
const DefaultTimeout = 10 * time.Second

// HTTPProvider submits claims to a rewards backend over HTTP.
type HTTPProvider struct {
	httpClient *resty.Client
	log        logging.Logger
}

// NewHTTPProvider creates an HTTPProvider posting to {endpoint}/claims.
func NewHTTPProvider(endpoint, apiKey string, timeout time.Duration, log logging.Logger) *HTTPProvider {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logging.Nop()
	}
	log = log.WithField("component", "rewards")

	httpClient := resty.New()
	httpClient.
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(250 * time.Millisecond).
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
	if apiKey != "" {
		httpClient.SetAuthToken(apiKey)
	}

	return &HTTPProvider{httpClient: httpClient, log: log}
}

type claimPayload struct {
	Wallet  string `json:"wallet"`
	Network string `json:"network"`
	Points  int64  `json:"points"`
}

type claimResponse struct {
	Success       bool   `json:"success"`
	ClaimedAmount int64  `json:"claimed_amount"`
	TxReference   string `json:"tx_reference"`
	Message       string `json:"message"`
}

// Claim posts the claim. The idempotency key travels in the Idempotency-Key
// header so retries are deduplicated by the backend.
func (p *HTTPProvider) Claim(ctx context.Context, req ClaimRequest) (ClaimResult, error) {
	var body claimResponse
	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", req.IdempotencyKey).
		SetBody(claimPayload{
			Wallet:  req.Address,
			Network: string(req.Network),
			Points:  req.Points,
		}).
		SetResult(&body).
		Post("/claims")
	if err != nil {
		return ClaimResult{}, errors.Wrap(err, "[Claim] request")
	}
	if resp.IsError() {
		return ClaimResult{}, errors.New(fmt.Sprintf("[Claim] Status: %d - Request: %s", resp.StatusCode(), resp.Request.URL))
	}

	return ClaimResult{
		Success:       body.Success,
		ClaimedAmount: body.ClaimedAmount,
		TxReference:   body.TxReference,
		Message:       body.Message,
	}, nil
}

var _ Provider = (*HTTPProvider)(nil)
