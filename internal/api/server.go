// Package api exposes wallet scanning, points and claims over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/logging"
	"zombie-scanner/internal/rewards"
)

// Scanner returns a wallet's zombie assets.
type Scanner interface {
	Scan(ctx context.Context, address string) ([]domain.Asset, error)
	Refresh(ctx context.Context, address string) ([]domain.Asset, error)
}

// Sessions tracks wallet connections.
type Sessions interface {
	Connect(ctx context.Context, address string) (*domain.WalletSession, error)
	Disconnect(address string) bool
	Active() []string
	PendingScans() int
}

// Points computes a wallet's points.
type Points interface {
	Points(ctx context.Context, address string) (domain.PointsResult, error)
}

// Claims executes and lists claims.
type Claims interface {
	Claim(ctx context.Context, address string) (*domain.ClaimRecord, error)
	History(ctx context.Context, address string) ([]*domain.ClaimRecord, error)
	Breaker() *rewards.Breaker
}

// Deps wires the handlers. Metrics and Watching are optional.
type Deps struct {
	Network  domain.Network
	Scanner  Scanner
	Sessions Sessions
	Points   Points
	Claims   Claims
	Metrics  http.Handler
	Watching func() int
	Log      logging.Logger
}

// Server serves the HTTP API.
type Server struct {
	deps    Deps
	log     logging.Logger
	mux     *http.ServeMux
	started time.Time

	mu         sync.Mutex
	scans      int
	lastScanAt time.Time
}

// NewServer creates a Server and registers its routes.
func NewServer(deps Deps) *Server {
	s := &Server{
		deps:    deps,
		log:     logging.Component(deps.Log, "api"),
		mux:     http.NewServeMux(),
		started: time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /wallets/{address}/connect", s.handleConnect)
	s.mux.HandleFunc("POST /wallets/{address}/disconnect", s.handleDisconnect)
	s.mux.HandleFunc("GET /wallets/{address}/assets", s.handleAssets)
	s.mux.HandleFunc("POST /wallets/{address}/refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /wallets/{address}/points", s.handlePoints)
	s.mux.HandleFunc("POST /wallets/{address}/claim", s.handleClaim)
	s.mux.HandleFunc("GET /wallets/{address}/claims", s.handleClaims)

	// Health check
	s.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Prometheus metrics
	if s.deps.Metrics != nil {
		s.mux.Handle("GET /metrics", s.deps.Metrics)
	}

	// Status endpoint
	s.mux.HandleFunc("GET /status", s.handleStatus)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status           string    `json:"status"`
	Network          string    `json:"network"`
	Uptime           string    `json:"uptime"`
	StartedAt        time.Time `json:"started_at"`
	ConnectedWallets int       `json:"connected_wallets"`
	PendingScans     int       `json:"pending_scans"`
	WatchedWallets   int       `json:"watched_wallets"`
	ScansServed      int       `json:"scans_served"`
	LastScanAt       time.Time `json:"last_scan_at,omitempty"`
	RewardsBreaker   string    `json:"rewards_breaker,omitempty"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:      "running",
		Network:     string(s.deps.Network),
		Uptime:      time.Since(s.started).Round(time.Second).String(),
		StartedAt:   s.started,
		ScansServed: s.scans,
		LastScanAt:  s.lastScanAt,
	}
	s.mu.Unlock()

	if s.deps.Sessions != nil {
		resp.ConnectedWallets = len(s.deps.Sessions.Active())
		resp.PendingScans = s.deps.Sessions.PendingScans()
	}
	if s.deps.Watching != nil {
		resp.WatchedWallets = s.deps.Watching()
	}
	if s.deps.Claims != nil {
		if b := s.deps.Claims.Breaker(); b != nil {
			resp.RewardsBreaker = b.State().String()
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) recordScan() {
	s.mu.Lock()
	s.scans++
	s.lastScanAt = time.Now()
	s.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
