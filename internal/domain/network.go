package domain

// Network identifies the ledger cluster a scan was performed against.
type Network string

const (
	NetworkMainnet Network = "mainnet-beta"
	NetworkDevnet  Network = "devnet"
	NetworkTestnet Network = "testnet"
)

// String returns the string representation of Network.
func (n Network) String() string {
	return string(n)
}

// IsValid checks if the network is a known cluster.
func (n Network) IsValid() bool {
	return n == NetworkMainnet || n == NetworkDevnet || n == NetworkTestnet
}
