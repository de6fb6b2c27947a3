package ledger

import (
	"context"
	"errors"
	"math/big"
	"regexp"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilakurskaa/TrustFlow/internal/adapter"
	"github.com/kamilakurskaa/TrustFlow/internal/config"
	"github.com/kamilakurskaa/TrustFlow/internal/domain"
	"github.com/kamilakurskaa/TrustFlow/internal/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	m.Run()
}

var txHashPattern = regexp.MustCompile(`^0x[0-9a-f]{64}$`)

type fakeEthClient struct {
	chainID   int64
	block     uint64
	syncing   bool
	failCalls bool
	closed    bool
}

func (c *fakeEthClient) ChainID(context.Context) (*big.Int, error) {
	if c.failCalls {
		return nil, errors.New("connection refused")
	}
	return big.NewInt(c.chainID), nil
}

func (c *fakeEthClient) BlockNumber(context.Context) (uint64, error) {
	if c.failCalls {
		return 0, errors.New("connection refused")
	}
	return c.block, nil
}

func (c *fakeEthClient) SyncProgress(context.Context) (*ethereum.SyncProgress, error) {
	if c.failCalls {
		return nil, errors.New("connection refused")
	}
	if c.syncing {
		return &ethereum.SyncProgress{CurrentBlock: c.block}, nil
	}
	return nil, nil
}

func (c *fakeEthClient) Close() { c.closed = true }

type fakeDialer struct {
	client  adapter.EthClient
	dialErr error
}

func (d *fakeDialer) Dial(context.Context, string) (adapter.EthClient, error) {
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return d.client, nil
}

func TestFingerprint_KeyOrderInvariant(t *testing.T) {
	a, err := Fingerprint(map[string]any{"score": 700, "user_id": 1})
	require.NoError(t, err)
	b, err := Fingerprint(map[string]any{"user_id": 1, "score": 700})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	c, err := Fingerprint(map[string]any{"user_id": 2, "score": 700})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestTransactionHash_Format(t *testing.T) {
	now := time.Now()
	tx := transactionHash("abc123", now)
	assert.Regexp(t, txHashPattern, tx)
	assert.NotEqual(t, tx, transactionHash("abc123", now.Add(time.Nanosecond)))
}

func TestMockLedger_Record(t *testing.T) {
	l := NewMock(adapter.NewClock())

	receipt, err := l.Record(context.Background(), domain.LedgerDataTypeCreditReport, map[string]any{
		"user_id": uint64(7),
		"score":   712,
	})
	require.NoError(t, err)
	assert.Regexp(t, txHashPattern, receipt.TransactionHash)
	assert.Len(t, receipt.DataHash, 64)
	assert.GreaterOrEqual(t, receipt.BlockNumber, uint64(mockBlockMin))
	assert.LessOrEqual(t, receipt.BlockNumber, uint64(mockBlockMax))

	// Same payload fingerprints identically on every write.
	again, err := l.Record(context.Background(), domain.LedgerDataTypeCreditReport, map[string]any{
		"score":   712,
		"user_id": uint64(7),
	})
	require.NoError(t, err)
	assert.Equal(t, receipt.DataHash, again.DataHash)
}

func TestMockLedger_Verify(t *testing.T) {
	l := NewMock(adapter.NewClock())
	payload := map[string]any{"user_id": uint64(7), "score": 712}

	receipt, err := l.Record(context.Background(), domain.LedgerDataTypeCreditReport, payload)
	require.NoError(t, err)

	ok, err := l.Verify(context.Background(), receipt.DataHash, payload)
	require.NoError(t, err)
	assert.True(t, ok)

	// A tampered payload no longer matches the recorded hash.
	ok, err = l.Verify(context.Background(), receipt.DataHash, map[string]any{"user_id": uint64(7), "score": 800})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMockLedger_QueryRating(t *testing.T) {
	l := NewMock(adapter.NewClock())

	tests := []struct {
		userID uint64
		rating int64
	}{
		{userID: 1, rating: 500 + 12345%300},
		{userID: 2, rating: 500 + 24690%300},
		{userID: 100, rating: 500 + 1234500%300},
	}

	for _, tt := range tests {
		rating, err := l.QueryRating(context.Background(), tt.userID)
		require.NoError(t, err)
		assert.Equal(t, tt.rating, rating)
		assert.GreaterOrEqual(t, rating, int64(500))
		assert.Less(t, rating, int64(800))

		again, err := l.QueryRating(context.Background(), tt.userID)
		require.NoError(t, err)
		assert.Equal(t, rating, again)
	}
}

func TestMockLedger_NetworkStatus(t *testing.T) {
	l := NewMock(adapter.NewClock())

	status, err := l.NetworkStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ModeMock, status.Mode)
	assert.True(t, status.Healthy)
	assert.False(t, status.Syncing)
	assert.EqualValues(t, mockChainID, status.ChainID)
}

func TestNew_EmptyRPCURLSelectsMock(t *testing.T) {
	l := New(context.Background(), config.LedgerConfig{}, &fakeDialer{}, adapter.NewClock())
	assert.Equal(t, ModeMock, l.Mode())
}

func TestNew_DialFailureFallsBackToMock(t *testing.T) {
	dialer := &fakeDialer{dialErr: errors.New("no route to host")}
	l := New(context.Background(), config.LedgerConfig{RPCURL: "http://localhost:8545"}, dialer, adapter.NewClock())
	assert.Equal(t, ModeMock, l.Mode())
}

func TestEthLedger_Record(t *testing.T) {
	client := &fakeEthClient{chainID: 11155111, block: 4_200_000}
	l := New(context.Background(), config.LedgerConfig{RPCURL: "http://localhost:8545", ChainID: 11155111},
		&fakeDialer{client: client}, adapter.NewClock())
	require.Equal(t, ModeLive, l.Mode())

	receipt, err := l.Record(context.Background(), domain.LedgerDataTypeUserConsent, map[string]any{"user_id": 3})
	require.NoError(t, err)
	assert.Equal(t, uint64(4_200_000), receipt.BlockNumber)
	assert.Regexp(t, txHashPattern, receipt.TransactionHash)
}

func TestEthLedger_RecordNodeDown(t *testing.T) {
	client := &fakeEthClient{failCalls: true}
	l := New(context.Background(), config.LedgerConfig{RPCURL: "http://localhost:8545"},
		&fakeDialer{client: client}, adapter.NewClock())

	_, err := l.Record(context.Background(), domain.LedgerDataTypeCreditReport, map[string]any{"user_id": 3})
	assert.ErrorIs(t, err, domain.ErrLedgerUnavailable)
}

func TestEthLedger_Verify(t *testing.T) {
	client := &fakeEthClient{chainID: 11155111, block: 4_200_000}
	l := New(context.Background(), config.LedgerConfig{RPCURL: "http://localhost:8545"},
		&fakeDialer{client: client}, adapter.NewClock())

	payload := map[string]any{"user_id": uint64(3), "score": 640}
	receipt, err := l.Record(context.Background(), domain.LedgerDataTypeCreditReport, payload)
	require.NoError(t, err)

	ok, err := l.Verify(context.Background(), receipt.DataHash, payload)
	require.NoError(t, err)
	assert.True(t, ok)

	// A node outage fails the verification instead of answering locally.
	client.failCalls = true
	_, err = l.Verify(context.Background(), receipt.DataHash, payload)
	assert.ErrorIs(t, err, domain.ErrLedgerUnavailable)
}

func TestEthLedger_NetworkStatus(t *testing.T) {
	tests := []struct {
		name    string
		client  *fakeEthClient
		healthy bool
		syncing bool
	}{
		{
			name:    "healthy synced node",
			client:  &fakeEthClient{chainID: 1, block: 19_000_000},
			healthy: true,
		},
		{
			name:    "healthy syncing node",
			client:  &fakeEthClient{chainID: 1, block: 18_000_000, syncing: true},
			healthy: true,
			syncing: true,
		},
		{
			name:    "unreachable node",
			client:  &fakeEthClient{failCalls: true},
			healthy: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(context.Background(), config.LedgerConfig{RPCURL: "http://localhost:8545"},
				&fakeDialer{client: tt.client}, adapter.NewClock())

			status, err := l.NetworkStatus(context.Background())
			require.NoError(t, err)
			assert.Equal(t, ModeLive, status.Mode)
			assert.Equal(t, tt.healthy, status.Healthy)
			assert.Equal(t, tt.syncing, status.Syncing)
		})
	}
}
