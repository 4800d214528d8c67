package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/rewards"
	"zombie-scanner/internal/scanner"
	"zombie-scanner/internal/scoring"
	"zombie-scanner/internal/solana"
)

type sessionResponse struct {
	Address          string `json:"address"`
	Network          string `json:"network"`
	FirstConnectedAt int64  `json:"first_connected_at"`
	LastConnectedAt  int64  `json:"last_connected_at"`
	LastScanAt       *int64 `json:"last_scan_at,omitempty"`
	ConnectCount     int64  `json:"connect_count"`
}

type assetsResponse struct {
	Address      string                  `json:"address"`
	Network      string                  `json:"network"`
	Assets       []domain.Asset          `json:"assets"`
	Counts       map[domain.Category]int `json:"counts"`
	TotalUSD     decimal.Decimal         `json:"total_usd"`
	PointsPerDay int64                   `json:"points_per_day"`
}

type claimResponse struct {
	ClaimID       string  `json:"claim_id"`
	Points        int64   `json:"points"`
	ClaimedAmount int64   `json:"claimed_amount"`
	TxReference   string  `json:"tx_reference,omitempty"`
	Provider      string  `json:"provider"`
	Status        string  `json:"status"`
	Error         *string `json:"error,omitempty"`
	CreatedAt     int64   `json:"created_at"`
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")

	sess, err := s.deps.Sessions.Connect(r.Context(), address)
	if err != nil {
		s.writeFailure(w, "connect", address, err)
		return
	}

	writeJSON(w, http.StatusAccepted, sessionResponse{
		Address:          sess.Address,
		Network:          string(sess.Network),
		FirstConnectedAt: sess.FirstConnectedAt,
		LastConnectedAt:  sess.LastConnectedAt,
		LastScanAt:       sess.LastScanAt,
		ConnectCount:     sess.ConnectCount,
	})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if err := scanner.ValidateAddress(address); err != nil {
		s.writeFailure(w, "disconnect", address, err)
		return
	}

	if s.deps.Sessions.Disconnect(address) {
		s.log.WithField("address", address).Debugf("pending scan cancelled")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	s.serveAssets(w, r, s.deps.Scanner.Scan)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.serveAssets(w, r, s.deps.Scanner.Refresh)
}

func (s *Server) serveAssets(w http.ResponseWriter, r *http.Request, scan func(context.Context, string) ([]domain.Asset, error)) {
	address := r.PathValue("address")

	assets, err := scan(r.Context(), address)
	if err != nil {
		s.writeFailure(w, "scan", address, err)
		return
	}
	s.recordScan()

	total := decimal.Zero
	for _, a := range assets {
		if a.USDValue != nil {
			total = total.Add(*a.USDValue)
		}
	}

	writeJSON(w, http.StatusOK, assetsResponse{
		Address:      address,
		Network:      string(s.deps.Network),
		Assets:       assets,
		Counts:       domain.CountByCategory(assets),
		TotalUSD:     total,
		PointsPerDay: scoring.PointsPerDay(assets),
	})
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")

	res, err := s.deps.Points.Points(r.Context(), address)
	if err != nil {
		s.writeFailure(w, "points", address, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")

	rec, err := s.deps.Claims.Claim(r.Context(), address)
	if err != nil {
		s.writeFailure(w, "claim", address, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimResponse(rec))
}

func (s *Server) handleClaims(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if err := scanner.ValidateAddress(address); err != nil {
		s.writeFailure(w, "claims", address, err)
		return
	}

	records, err := s.deps.Claims.History(r.Context(), address)
	if err != nil {
		s.writeFailure(w, "claims", address, err)
		return
	}

	out := make([]claimResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toClaimResponse(rec))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"address": address,
		"claims":  out,
	})
}

func toClaimResponse(rec *domain.ClaimRecord) claimResponse {
	return claimResponse{
		ClaimID:       rec.ClaimID,
		Points:        rec.Points,
		ClaimedAmount: rec.ClaimedAmount,
		TxReference:   rec.TxReference,
		Provider:      string(rec.Provider),
		Status:        string(rec.Status),
		Error:         rec.ErrorMessage,
		CreatedAt:     rec.CreatedAt,
	}
}

// writeFailure maps err onto a status code and a user-facing message.
func (s *Server) writeFailure(w http.ResponseWriter, op, address string, err error) {
	status, msg := classifyError(err)
	log := s.log.WithError(err).WithFields(map[string]interface{}{
		"op":      op,
		"address": address,
		"status":  status,
	})
	if status >= http.StatusInternalServerError {
		log.Warnf("request failed")
	} else {
		log.Debugf("request rejected")
	}
	writeError(w, status, msg)
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, scanner.ErrInvalidAddress):
		return http.StatusBadRequest, scanner.UserMessage(err)
	case errors.Is(err, rewards.ErrNothingToClaim):
		return http.StatusConflict, "No unclaimed points are available for this wallet."
	case errors.Is(err, rewards.ErrClaimFailed):
		return http.StatusBadGateway, "The rewards service could not process the claim. Try again later."
	case errors.Is(err, solana.ErrLedgerTimeout):
		return http.StatusGatewayTimeout, scanner.UserMessage(err)
	case errors.Is(err, solana.ErrAccessDenied), errors.Is(err, solana.ErrLedgerUnreachable):
		return http.StatusBadGateway, scanner.UserMessage(err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "The request was cancelled before the scan completed."
	}
	return http.StatusInternalServerError, scanner.UserMessage(err)
}
