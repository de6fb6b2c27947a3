// Package workflow runs the asynchronous credit scoring pipeline. Submitting
// a request persists it in the processing state and schedules the compute on
// a bounded worker pool; the submitting request returns immediately and
// clients poll for the terminal result.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/kamilakurskaa/TrustFlow/internal/adapter"
	"github.com/kamilakurskaa/TrustFlow/internal/datagen"
	"github.com/kamilakurskaa/TrustFlow/internal/domain"
	"github.com/kamilakurskaa/TrustFlow/internal/generator"
	"github.com/kamilakurskaa/TrustFlow/internal/ledger"
	"github.com/kamilakurskaa/TrustFlow/internal/logger"
	"github.com/kamilakurskaa/TrustFlow/internal/store"
	"github.com/kamilakurskaa/TrustFlow/internal/store/schema"
)

// Config holds the engine configuration
type Config struct {
	// PoolSize bounds the number of concurrent compute tasks
	PoolSize int
	// QueueSize bounds the number of queued compute tasks
	QueueSize int
	// ComputeTimeout bounds a single compute task
	ComputeTimeout time.Duration
	// ContractAddress is stamped on ledger records written by the engine
	ContractAddress string
}

// SubmitParams describes one scoring submission.
type SubmitParams struct {
	// UserID is the subject of the scoring attempt
	UserID uint64
	// UseLedger requests recording of the resulting report on the ledger
	UseLedger bool
	// SourceDocumentID scores from a parsed uploaded document instead of
	// generated data when set
	SourceDocumentID *uint64
}

// Verification is the outcome of checking a report against its ledger record.
type Verification struct {
	ReportID        uint64    `json:"report_id"`
	Recorded        bool      `json:"recorded"`
	Verified        bool      `json:"verified"`
	TransactionHash string    `json:"transaction_hash,omitempty"`
	DataHash        string    `json:"data_hash,omitempty"`
	BlockNumber     *int64    `json:"block_number,omitempty"`
	Detail          string    `json:"detail,omitempty"`
	VerifiedAt      time.Time `json:"verified_at"`
}

// Engine coordinates credit scoring submissions
type Engine struct {
	config  Config
	store   store.Store
	ledger  ledger.Ledger
	datagen datagen.Client
	scorer  Scorer
	clock   adapter.Clock
	pool    pond.Pool
}

// NewEngine creates a scoring engine with its own worker pool
func NewEngine(cfg Config, s store.Store, l ledger.Ledger, dg datagen.Client, scorer Scorer, clock adapter.Clock) *Engine {
	if cfg.ComputeTimeout <= 0 {
		cfg.ComputeTimeout = time.Minute
	}
	return &Engine{
		config:  cfg,
		store:   s,
		ledger:  l,
		datagen: dg,
		scorer:  scorer,
		clock:   clock,
		pool:    pond.NewPool(cfg.PoolSize, pond.WithQueueSize(cfg.QueueSize)),
	}
}

// Submit persists a new processing request and schedules its compute.
// The returned request is still in the processing state.
func (e *Engine) Submit(ctx context.Context, params SubmitParams) (*schema.CreditRequest, error) {
	request := &schema.CreditRequest{
		UserID:    params.UserID,
		Status:    domain.RequestStatusProcessing,
		UseLedger: params.UseLedger,
	}
	if err := e.store.CreateCreditRequest(ctx, request); err != nil {
		return nil, err
	}

	requestID := request.ID
	e.pool.Go(func() {
		e.compute(requestID, params)
	})

	logger.Info("credit request submitted",
		zap.Uint64("requestID", requestID),
		zap.Uint64("userID", params.UserID),
		zap.Bool("useLedger", params.UseLedger))

	return request, nil
}

// Shutdown stops accepting tasks and waits for in-flight computes to finish
func (e *Engine) Shutdown() {
	e.pool.StopAndWait()
}

// compute runs one scoring attempt to a terminal state. It never returns an
// error; failures are persisted on the request instead.
func (e *Engine) compute(requestID uint64, params SubmitParams) {
	ctx, cancel := context.WithTimeout(context.Background(), e.config.ComputeTimeout)
	defer cancel()

	request, err := e.store.GetCreditRequest(ctx, requestID)
	if err != nil {
		logger.Error(fmt.Errorf("failed to load credit request %d: %w", requestID, err))
		return
	}
	if request == nil || request.Status != domain.RequestStatusProcessing {
		return
	}

	user, err := e.store.GetUserByID(ctx, request.UserID)
	if err != nil {
		e.fail(ctx, requestID, fmt.Sprintf("failed to load subject: %v", err))
		return
	}
	if user == nil {
		e.fail(ctx, requestID, "subject not found")
		return
	}

	features, err := e.features(ctx, user, params)
	if err != nil {
		e.fail(ctx, requestID, err.Error())
		return
	}

	score, err := e.scorer.Score(ctx, features)
	if err != nil {
		e.fail(ctx, requestID, fmt.Sprintf("scoring failed: %v", err))
		return
	}

	category := domain.CategorizeScore(score)
	reputation := domain.ReputationFromScore(score)

	payload := map[string]any{
		"user_id":          user.ID,
		"score":            score,
		"score_category":   string(category),
		"reputation_score": reputation,
		"features":         features,
		"generated_at":     e.clock.Now().UTC().Format(time.RFC3339),
	}
	reportData, err := json.Marshal(payload)
	if err != nil {
		e.fail(ctx, requestID, fmt.Sprintf("failed to serialize report: %v", err))
		return
	}

	report := &schema.CreditReport{
		UserID:           user.ID,
		Score:            score,
		ScoreCategory:    category,
		ReputationScore:  reputation,
		ReportData:       datatypes.JSON(reportData),
		SourceDocumentID: params.SourceDocumentID,
	}

	// Ledger recording is best effort and needs a configured wallet. A failed
	// write never fails the report.
	var record *schema.BlockchainRecord
	if request.UseLedger && user.WalletAddress != nil {
		receipt, err := e.ledger.Record(ctx, domain.LedgerDataTypeCreditReport, json.RawMessage(reportData))
		if err != nil {
			logger.Warn("ledger recording failed, completing report without it",
				zap.Uint64("requestID", requestID), zap.Error(err))
		} else {
			blockNumber := int64(receipt.BlockNumber)
			report.LedgerFingerprint = &receipt.DataHash
			report.TransactionHash = &receipt.TransactionHash
			report.BlockNumber = &blockNumber
			record = &schema.BlockchainRecord{
				UserID:          user.ID,
				TransactionHash: receipt.TransactionHash,
				BlockNumber:     blockNumber,
				ContractAddress: e.config.ContractAddress,
				DataHash:        receipt.DataHash,
				DataType:        domain.LedgerDataTypeCreditReport,
				TransactionData: datatypes.JSON(reportData),
			}
		}
	}

	if err := e.store.FinalizeCreditReport(ctx, requestID, report, record); err != nil {
		logger.Error(fmt.Errorf("failed to finalize credit request %d: %w", requestID, err))
		return
	}

	logger.Info("credit request completed",
		zap.Uint64("requestID", requestID),
		zap.Uint64("userID", user.ID),
		zap.Int("score", score),
		zap.String("category", string(category)),
		zap.Bool("ledgerRecorded", record != nil))
}

// features resolves the feature set for a scoring attempt, from the parsed
// source document when one is given and from the generation service otherwise.
func (e *Engine) features(ctx context.Context, user *schema.User, params SubmitParams) (*generator.FeatureSet, error) {
	if params.SourceDocumentID != nil {
		doc, err := e.store.GetDocumentForUser(ctx, user.ID, *params.SourceDocumentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load source document: %v", err)
		}
		if doc == nil {
			return nil, fmt.Errorf("source document %d not found", *params.SourceDocumentID)
		}
		if !doc.IsParsed || len(doc.ParsedData) == 0 {
			return nil, fmt.Errorf("source document %d is not parsed", doc.ID)
		}
		var features generator.FeatureSet
		if err := json.Unmarshal(doc.ParsedData, &features); err != nil {
			return nil, fmt.Errorf("source document %d has malformed parsed data: %v", doc.ID, err)
		}
		return &features, nil
	}

	hasHistory := user.HasCreditHistory != nil && *user.HasCreditHistory
	features, err := e.datagen.GenerateFeatures(ctx, user.ID, hasHistory)
	if err != nil {
		return nil, fmt.Errorf("data generation failed: %v", err)
	}
	return features, nil
}

func (e *Engine) fail(ctx context.Context, requestID uint64, reason string) {
	logger.Warn("credit request failed",
		zap.Uint64("requestID", requestID),
		zap.String("reason", reason))
	if err := e.store.FailCreditRequest(ctx, requestID, reason); err != nil {
		logger.Error(fmt.Errorf("failed to mark credit request %d failed: %w", requestID, err))
	}
}

// SubmitParsing creates a parser job fed by the data generation service and
// schedules it. The job stands in for fetching data from the named external
// source, which is only allowed once the subject has consented to data
// processing.
func (e *Engine) SubmitParsing(ctx context.Context, userID uint64, dataSource string) (*schema.ParserJob, error) {
	user, err := e.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	if !user.ConsentDataProcessing {
		return nil, domain.ErrNoConsent
	}

	job := &schema.ParserJob{
		UserID:     userID,
		Status:     domain.RequestStatusProcessing,
		DataSource: dataSource,
	}
	if err := e.store.CreateParserJob(ctx, job); err != nil {
		return nil, err
	}

	jobID := job.ID
	e.pool.Go(func() {
		e.parse(jobID, userID, nil)
	})

	logger.Info("parser job submitted",
		zap.Uint64("jobID", jobID),
		zap.Uint64("userID", userID),
		zap.String("dataSource", dataSource))

	return job, nil
}

// SubmitDocumentProcessing creates a parser job for an uploaded document and
// schedules it. On completion the document carries the parsed payload and can
// back a document-sourced scoring request.
func (e *Engine) SubmitDocumentProcessing(ctx context.Context, userID, documentID uint64) (*schema.ParserJob, error) {
	doc, err := e.store.GetDocumentForUser(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}

	job := &schema.ParserJob{
		UserID:     userID,
		Status:     domain.RequestStatusProcessing,
		DataSource: "document",
		DocumentID: &documentID,
	}
	if err := e.store.CreateParserJob(ctx, job); err != nil {
		return nil, err
	}

	jobID := job.ID
	e.pool.Go(func() {
		e.parse(jobID, userID, &documentID)
	})

	logger.Info("document processing submitted",
		zap.Uint64("jobID", jobID),
		zap.Uint64("userID", userID),
		zap.Uint64("documentID", documentID))

	return job, nil
}

// parse runs one parser job to a terminal state. Extraction is delegated to
// the data generation service until a real document parser is available.
func (e *Engine) parse(jobID, userID uint64, documentID *uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), e.config.ComputeTimeout)
	defer cancel()

	user, err := e.store.GetUserByID(ctx, userID)
	if err != nil || user == nil {
		e.failParse(ctx, jobID, "subject not found")
		return
	}

	hasHistory := user.HasCreditHistory != nil && *user.HasCreditHistory
	features, err := e.datagen.GenerateFeatures(ctx, userID, hasHistory)
	if err != nil {
		e.failParse(ctx, jobID, fmt.Sprintf("data generation failed: %v", err))
		return
	}

	result, err := json.Marshal(features)
	if err != nil {
		e.failParse(ctx, jobID, fmt.Sprintf("failed to serialize parsed data: %v", err))
		return
	}

	if documentID != nil {
		if err := e.store.MarkDocumentParsed(ctx, *documentID, datatypes.JSON(result)); err != nil {
			e.failParse(ctx, jobID, fmt.Sprintf("failed to store parsed document: %v", err))
			return
		}
	}

	if err := e.store.CompleteParserJob(ctx, jobID, datatypes.JSON(result)); err != nil {
		logger.Error(fmt.Errorf("failed to complete parser job %d: %w", jobID, err))
		return
	}

	logger.Info("parser job completed", zap.Uint64("jobID", jobID), zap.Uint64("userID", userID))
}

func (e *Engine) failParse(ctx context.Context, jobID uint64, reason string) {
	logger.Warn("parser job failed",
		zap.Uint64("jobID", jobID),
		zap.String("reason", reason))
	if err := e.store.FailParserJob(ctx, jobID, reason); err != nil {
		logger.Error(fmt.Errorf("failed to mark parser job %d failed: %w", jobID, err))
	}
}

// VerifyOnLedger checks a stored report against its ledger record by asking
// the ledger to verify the recorded fingerprint against the stored payload.
func (e *Engine) VerifyOnLedger(ctx context.Context, userID, reportID uint64) (*Verification, error) {
	report, err := e.store.GetReportForUser(ctx, userID, reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, domain.ErrNotFound
	}

	verifiedAt := e.clock.Now().UTC()

	if report.LedgerFingerprint == nil || report.TransactionHash == nil {
		return &Verification{
			ReportID:   report.ID,
			Detail:     domain.ErrNoLedgerRecord.Error(),
			VerifiedAt: verifiedAt,
		}, nil
	}

	verified, err := e.ledger.Verify(ctx, *report.LedgerFingerprint, json.RawMessage(report.ReportData))
	if err != nil {
		return nil, fmt.Errorf("failed to verify report %d: %w", report.ID, err)
	}

	verification := &Verification{
		ReportID:        report.ID,
		Recorded:        true,
		Verified:        verified,
		TransactionHash: *report.TransactionHash,
		DataHash:        *report.LedgerFingerprint,
		BlockNumber:     report.BlockNumber,
		VerifiedAt:      verifiedAt,
	}
	if !verified {
		verification.Detail = "stored report does not match the recorded fingerprint"
	}
	return verification, nil
}
