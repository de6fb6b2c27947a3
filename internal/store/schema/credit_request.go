package schema

import (
	"time"

	"github.com/kamilakurskaa/TrustFlow/internal/domain"
)

// CreditRequest represents the credit_requests table - one in-flight or
// completed scoring attempt. Exactly one terminal status (completed or failed)
// is ever reached from processing.
type CreditRequest struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// UserID is the owning user
	UserID uint64 `gorm:"column:user_id;not null;index"`
	// Status is the lifecycle status of the scoring attempt
	Status domain.RequestStatus `gorm:"column:status;not null;type:text;default:'pending'"`
	// UseLedger records whether ledger recording was requested for this attempt
	UseLedger bool `gorm:"column:use_ledger;not null;default:false"`
	// LedgerRecorded indicates whether the ledger write actually happened
	LedgerRecorded bool `gorm:"column:ledger_recorded;not null;default:false"`
	// ErrorMessage holds the failure reason for failed requests
	ErrorMessage *string `gorm:"column:error_message;type:text"`
	// CreatedAt is the timestamp when the request was submitted
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	// CompletedAt is the timestamp when the request reached a terminal status
	CompletedAt *time.Time `gorm:"column:completed_at"`
}

// TableName specifies the table name for the CreditRequest model
func (CreditRequest) TableName() string {
	return "credit_requests"
}
