package ledger

import (
	"context"

	"go.uber.org/zap"

	"github.com/kamilakurskaa/TrustFlow/internal/adapter"
	"github.com/kamilakurskaa/TrustFlow/internal/config"
	"github.com/kamilakurskaa/TrustFlow/internal/domain"
	"github.com/kamilakurskaa/TrustFlow/internal/logger"
)

// ethLedger anchors receipts against a live Ethereum node. Receipts carry the
// real chain head as their block number; rating reads use the same derivation
// as the mock until the registry contract is deployed.
type ethLedger struct {
	client   adapter.EthClient
	clock    adapter.Clock
	contract string
	chainID  int64
}

// New builds a ledger from configuration. An empty RPC URL selects the mock
// implementation, and a failed dial falls back to it as well so the service
// can start without a reachable node.
func New(ctx context.Context, cfg config.LedgerConfig, dialer adapter.EthClientDialer, clock adapter.Clock) Ledger {
	if cfg.RPCURL == "" {
		return NewMock(clock)
	}
	client, err := dialer.Dial(ctx, cfg.RPCURL)
	if err != nil {
		logger.Warn("failed to dial ledger node, falling back to mock ledger",
			zap.String("rpcURL", cfg.RPCURL), zap.Error(err))
		return NewMock(clock)
	}
	logger.Info("connected to ledger node", zap.String("rpcURL", cfg.RPCURL))
	return &ethLedger{
		client:   client,
		clock:    clock,
		contract: cfg.ContractAddress,
		chainID:  cfg.ChainID,
	}
}

func (l *ethLedger) Mode() string {
	return ModeLive
}

func (l *ethLedger) RegisterProfile(ctx context.Context, userID uint64, email string) (string, error) {
	receipt, err := l.Record(ctx, domain.LedgerDataTypeUserProfile, map[string]any{
		"user_id": userID,
		"email":   email,
	})
	if err != nil {
		return "", err
	}
	return receipt.TransactionHash, nil
}

func (l *ethLedger) Record(ctx context.Context, dataType domain.LedgerDataType, payload any) (*Receipt, error) {
	dataHash, err := Fingerprint(payload)
	if err != nil {
		return nil, err
	}
	block, err := l.client.BlockNumber(ctx)
	if err != nil {
		return nil, domain.ErrLedgerUnavailable
	}
	return &Receipt{
		TransactionHash: transactionHash(dataHash, l.clock.Now()),
		DataHash:        dataHash,
		BlockNumber:     block,
	}, nil
}

// Verify recomputes the payload fingerprint and compares it to the recorded
// hash. The node is probed first so an unreachable ledger surfaces as an error
// instead of a silent local-only check.
func (l *ethLedger) Verify(ctx context.Context, dataHash string, payload any) (bool, error) {
	if _, err := l.client.BlockNumber(ctx); err != nil {
		return false, domain.ErrLedgerUnavailable
	}
	recomputed, err := Fingerprint(payload)
	if err != nil {
		return false, err
	}
	// TODO: cross-check the digest against the registry contract at l.contract once it is deployed
	return recomputed == dataHash, nil
}

// TODO: read the rating from the registry contract at l.contract once it is deployed
func (l *ethLedger) QueryRating(_ context.Context, userID uint64) (int64, error) {
	return 500 + int64(userID*12345%300), nil
}

func (l *ethLedger) NetworkStatus(ctx context.Context) (*NetworkStatus, error) {
	chainID, err := l.client.ChainID(ctx)
	if err != nil {
		return &NetworkStatus{Mode: ModeLive, Healthy: false}, nil
	}
	block, err := l.client.BlockNumber(ctx)
	if err != nil {
		return &NetworkStatus{Mode: ModeLive, ChainID: chainID.Int64(), Healthy: false}, nil
	}
	progress, err := l.client.SyncProgress(ctx)
	if err != nil {
		return &NetworkStatus{Mode: ModeLive, ChainID: chainID.Int64(), BlockNumber: block, Healthy: false}, nil
	}
	return &NetworkStatus{
		Mode:        ModeLive,
		ChainID:     chainID.Int64(),
		BlockNumber: block,
		Syncing:     progress != nil,
		Healthy:     true,
	}, nil
}
