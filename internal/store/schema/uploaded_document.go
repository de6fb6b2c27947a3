package schema

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kamilakurskaa/TrustFlow/internal/domain"
)

// UploadedDocument represents the uploaded_documents table - metadata and
// parse state for a user-uploaded file. Rows are soft-deleted.
type UploadedDocument struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// UserID is the owning user
	UserID uint64 `gorm:"column:user_id;not null;index"`
	// Filename is the original client-supplied file name
	Filename string `gorm:"column:filename;not null;type:text"`
	// StoredPath is the path of the file on disk under the upload directory
	StoredPath string `gorm:"column:stored_path;not null;type:text"`
	// FileSize is the file size in bytes
	FileSize int64 `gorm:"column:file_size;not null;default:0"`
	// MimeType is the sniffed content type of the file
	MimeType string `gorm:"column:mime_type;not null;type:text;default:'application/pdf'"`
	// DocumentType classifies the document's origin
	DocumentType domain.DocumentType `gorm:"column:document_type;not null;type:text;default:'gosuslugi'"`
	// ParsedData holds the structured payload extracted from the document
	ParsedData datatypes.JSON `gorm:"column:parsed_data;type:jsonb"`
	// IsParsed indicates whether parsing has completed
	IsParsed bool `gorm:"column:is_parsed;not null;default:false"`
	// ParsingError holds the parse failure reason, if any
	ParsingError *string `gorm:"column:parsing_error;type:text"`
	// IsVerified indicates whether the document passed verification
	IsVerified bool `gorm:"column:is_verified;not null;default:false"`
	// VerificationMethod names how the document was verified (manual, automated, ledger)
	VerificationMethod *string `gorm:"column:verification_method;type:text"`
	// LedgerFingerprint is the document fingerprint recorded on the ledger, if any
	LedgerFingerprint *string `gorm:"column:ledger_fingerprint;type:text"`
	// TransactionHash is the ledger transaction reference for the fingerprint, if any
	TransactionHash *string `gorm:"column:transaction_hash;type:text"`
	// Status is the processing lifecycle status of the document
	Status domain.RequestStatus `gorm:"column:status;not null;type:text;default:'pending'"`
	// CreatedAt is the timestamp when the document was uploaded
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	// UpdatedAt is the timestamp when the record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
	// DeletedAt marks soft deletion
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// TableName specifies the table name for the UploadedDocument model
func (UploadedDocument) TableName() string {
	return "uploaded_documents"
}
