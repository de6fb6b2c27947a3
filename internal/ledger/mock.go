package ledger

import (
	"context"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/kamilakurskaa/TrustFlow/internal/adapter"
	"github.com/kamilakurskaa/TrustFlow/internal/domain"
	"github.com/kamilakurskaa/TrustFlow/internal/logger"
)

// Simulated block heights fall in this window.
const (
	mockBlockMin = 1_000_000
	mockBlockMax = 2_000_000
)

const mockChainID = 1337

// mockLedger fabricates receipts without touching any network. Transaction
// hashes are derived from the payload fingerprint so verification against a
// stored receipt still works.
type mockLedger struct {
	clock adapter.Clock

	mu   sync.Mutex
	rand *rand.Rand
}

// NewMock creates an in-memory ledger simulation
func NewMock(clock adapter.Clock) Ledger {
	return &mockLedger{
		clock: clock,
		rand:  rand.New(rand.NewSource(clock.Now().UnixNano())),
	}
}

func (l *mockLedger) Mode() string {
	return ModeMock
}

func (l *mockLedger) RegisterProfile(ctx context.Context, userID uint64, email string) (string, error) {
	receipt, err := l.Record(ctx, domain.LedgerDataTypeUserProfile, map[string]any{
		"user_id": userID,
		"email":   email,
	})
	if err != nil {
		return "", err
	}
	logger.Debug("registered profile on mock ledger",
		zap.Uint64("userID", userID),
		zap.String("txHash", receipt.TransactionHash))
	return receipt.TransactionHash, nil
}

func (l *mockLedger) Record(ctx context.Context, dataType domain.LedgerDataType, payload any) (*Receipt, error) {
	dataHash, err := Fingerprint(payload)
	if err != nil {
		return nil, err
	}
	return &Receipt{
		TransactionHash: transactionHash(dataHash, l.clock.Now()),
		DataHash:        dataHash,
		BlockNumber:     l.blockNumber(),
	}, nil
}

// Verify recomputes the payload fingerprint and compares it to the recorded hash
func (l *mockLedger) Verify(_ context.Context, dataHash string, payload any) (bool, error) {
	recomputed, err := Fingerprint(payload)
	if err != nil {
		return false, err
	}
	return recomputed == dataHash, nil
}

// QueryRating derives a stable per-user rating in [500, 800)
func (l *mockLedger) QueryRating(_ context.Context, userID uint64) (int64, error) {
	return 500 + int64(userID*12345%300), nil
}

func (l *mockLedger) NetworkStatus(_ context.Context) (*NetworkStatus, error) {
	return &NetworkStatus{
		Mode:        ModeMock,
		ChainID:     mockChainID,
		BlockNumber: l.blockNumber(),
		Syncing:     false,
		Healthy:     true,
	}, nil
}

func (l *mockLedger) blockNumber() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return mockBlockMin + uint64(l.rand.Int63n(mockBlockMax-mockBlockMin+1))
}
