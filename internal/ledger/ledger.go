// Package ledger records credit data fingerprints on a blockchain and answers
// rating and network queries against it. Two implementations exist: a mock
// ledger that fabricates deterministic receipts in memory, and an Ethereum
// ledger backed by a JSON-RPC node.
package ledger

import (
	"context"

	"github.com/kamilakurskaa/TrustFlow/internal/domain"
)

// Operating modes reported by NetworkStatus and Mode.
const (
	ModeMock = "mock"
	ModeLive = "live"
)

// Receipt describes a confirmed ledger write.
type Receipt struct {
	// TransactionHash is the 0x-prefixed hash of the recording transaction
	TransactionHash string `json:"transaction_hash"`
	// DataHash is the hex SHA-256 of the canonicalized payload
	DataHash string `json:"data_hash"`
	// BlockNumber is the block the transaction was included in
	BlockNumber uint64 `json:"block_number"`
}

// NetworkStatus describes the state of the ledger network.
type NetworkStatus struct {
	// Mode indicates which implementation answered, mock or live
	Mode string `json:"mode"`
	// ChainID identifies the network
	ChainID int64 `json:"chain_id"`
	// BlockNumber is the latest known block
	BlockNumber uint64 `json:"block_number"`
	// Syncing reports whether the node is still catching up
	Syncing bool `json:"syncing"`
	// Healthy reports whether the network answered the status probe
	Healthy bool `json:"healthy"`
}

// Ledger writes fingerprints of credit data to a blockchain and reads
// ratings and network state back.
type Ledger interface {
	// RegisterProfile anchors a newly created user profile and returns the
	// transaction hash of the registration
	RegisterProfile(ctx context.Context, userID uint64, email string) (string, error)

	// Record writes a fingerprint of payload to the ledger
	Record(ctx context.Context, dataType domain.LedgerDataType, payload any) (*Receipt, error)

	// Verify checks a recorded data hash against the current payload
	Verify(ctx context.Context, dataHash string, payload any) (bool, error)

	// QueryRating returns the on-ledger rating for a user
	QueryRating(ctx context.Context, userID uint64) (int64, error)

	// NetworkStatus probes the ledger network
	NetworkStatus(ctx context.Context) (*NetworkStatus, error)

	// Mode reports the operating mode, mock or live
	Mode() string
}
