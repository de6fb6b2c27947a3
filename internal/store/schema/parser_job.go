package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/kamilakurskaa/TrustFlow/internal/domain"
)

// ParserJob represents the parser_jobs table - an external-parsing or
// document-processing attempt with the same lifecycle as a credit request
type ParserJob struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// UserID is the owning user
	UserID uint64 `gorm:"column:user_id;not null;index"`
	// Status is the lifecycle status of the parsing attempt
	Status domain.RequestStatus `gorm:"column:status;not null;type:text;default:'pending'"`
	// DataSource names the external source or processing path driving this job
	DataSource string `gorm:"column:data_source;not null;type:text"`
	// DocumentID is the uploaded document being processed, for the document path
	DocumentID *uint64 `gorm:"column:document_id"`
	// ResultData holds the parsed payload once the job completes
	ResultData datatypes.JSON `gorm:"column:result_data;type:jsonb"`
	// ErrorMessage holds the failure reason for failed jobs
	ErrorMessage *string `gorm:"column:error_message;type:text"`
	// CreatedAt is the timestamp when the job was created
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	// CompletedAt is the timestamp when the job reached a terminal status
	CompletedAt *time.Time `gorm:"column:completed_at"`
}

// TableName specifies the table name for the ParserJob model
func (ParserJob) TableName() string {
	return "parser_jobs"
}
