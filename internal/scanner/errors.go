package scanner

import (
	"errors"

	"zombie-scanner/internal/solana"
)

// ErrInvalidAddress is returned for wallet addresses that are not 32-byte base58 keys.
var ErrInvalidAddress = errors.New("invalid wallet address")

// UserMessage returns a human-readable message for a scan failure.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidAddress):
		return "The wallet address is not a valid Solana public key."
	case errors.Is(err, solana.ErrAccessDenied):
		return "Access to the Solana RPC endpoint was denied or rate limited. Check the configured RPC endpoint and try again."
	case errors.Is(err, solana.ErrLedgerTimeout):
		return "The Solana network took too long to respond. Refresh to try again."
	case errors.Is(err, solana.ErrLedgerUnreachable):
		return "The Solana network could not be reached. Refresh to try again."
	}
	return "Scanning your wallet failed. Refresh to try again."
}
