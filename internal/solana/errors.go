package solana

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// ErrLedgerUnreachable is returned when the RPC endpoint cannot be reached
	// or answers with a server-side failure.
	ErrLedgerUnreachable = errors.New("ledger unreachable")

	// ErrAccessDenied is returned when the RPC endpoint rejects the caller
	// (rate limited, unauthorized or forbidden).
	ErrAccessDenied = errors.New("ledger access denied")

	// ErrLedgerTimeout is returned when a ledger call exceeds its deadline.
	ErrLedgerTimeout = errors.New("ledger timeout")
)

// RPCError is a JSON-RPC 2.0 error returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// statusError wraps a non-200 HTTP response.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.status, e.body)
}

// Unwrap maps the HTTP status onto a ledger error class.
func (e *statusError) Unwrap() error {
	switch e.status {
	case http.StatusTooManyRequests, http.StatusUnauthorized, http.StatusForbidden:
		return ErrAccessDenied
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return ErrLedgerTimeout
	}
	return ErrLedgerUnreachable
}

// retryable reports whether err is a transport-level fault worth retrying.
// Access denial and deadline errors are final.
func retryable(err error) bool {
	if errors.Is(err, ErrAccessDenied) || isTimeout(err) {
		return false
	}
	var rpcErr *RPCError
	return !errors.As(err, &rpcErr)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrLedgerTimeout) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// classify wraps a raw call failure with its ledger error class.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrAccessDenied), errors.Is(err, ErrLedgerUnreachable), errors.Is(err, ErrLedgerTimeout):
		return err
	case isTimeout(err):
		return fmt.Errorf("%w: %v", ErrLedgerTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	}
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrLedgerUnreachable, err)
}

// ErrorClass returns a short label for a ledger error, for metrics.
func ErrorClass(err error) string {
	var rpcErr *RPCError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, ErrLedgerTimeout):
		return "timeout"
	case errors.Is(err, ErrLedgerUnreachable):
		return "unreachable"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &rpcErr):
		return "rpc"
	}
	return "other"
}
