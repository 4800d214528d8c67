package domain

// WalletSession tracks connection history for one wallet on one network.
// Corresponds to wallet_sessions table in PostgreSQL.
type WalletSession struct {
	Address          string  // wallet public key (PK with network)
	Network          Network // ledger cluster
	FirstConnectedAt int64   // first connection (ms), never moved forward
	LastConnectedAt  int64   // most recent connection (ms)
	LastScanAt       *int64  // most recent successful scan (ms, nullable)
	ConnectCount     int64   // number of connect events
}
