package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/kamilakurskaa/TrustFlow/internal/domain"
)

// CreditReport represents the credit_reports table - an immutable scoring
// result. Multiple reports per user are allowed; the "current" report is the
// most recent by creation time.
type CreditReport struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// UserID is the owning user
	UserID uint64 `gorm:"column:user_id;not null;index"`
	// Score is the numeric credit score
	Score int `gorm:"column:score;not null"`
	// ScoreCategory is the band derived from Score via the fixed thresholds
	ScoreCategory domain.ScoreCategory `gorm:"column:score_category;not null;type:text"`
	// ReputationScore is Score normalized to [0, 1]
	ReputationScore float64 `gorm:"column:reputation_score;not null"`
	// ReportData is the serialized factor/report payload the fingerprint is computed over
	ReportData datatypes.JSON `gorm:"column:report_data;type:jsonb"`
	// LedgerFingerprint is the deterministic hash of the canonicalized payload, when recorded
	LedgerFingerprint *string `gorm:"column:ledger_fingerprint;type:text"`
	// TransactionHash is the ledger transaction reference, when recorded
	TransactionHash *string `gorm:"column:transaction_hash;type:text"`
	// BlockNumber is the ledger block the transaction landed in, when recorded
	BlockNumber *int64 `gorm:"column:block_number"`
	// SourceDocumentID links the report to the uploaded document it was scored from, if any
	SourceDocumentID *uint64 `gorm:"column:source_document_id"`
	// CreatedAt is the timestamp when the report was persisted
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName specifies the table name for the CreditReport model
func (CreditReport) TableName() string {
	return "credit_reports"
}
