package store

import (
	"context"

	"gorm.io/datatypes"

	"github.com/kamilakurskaa/TrustFlow/internal/store/schema"
)

// ProfileUpdate carries the profile fields supplied in an upsert.
// Nil fields are left untouched on an existing profile.
type ProfileUpdate struct {
	DateOfBirth      *string
	Address          *string
	EmploymentStatus *string
	MonthlyIncome    *int64
}

// MethodChoice carries the scoring-method selection persisted on the user
type MethodChoice struct {
	// HasCreditHistory is left unchanged when nil
	HasCreditHistory *bool
	// ConsentDataProcessing is always written
	ConsentDataProcessing bool
}

// Store defines the interface for database operations.
// Lookup methods return (nil, nil) when the record does not exist.
type Store interface {
	// CreateUserWithProfile creates the user and its empty profile in one
	// transaction, after checking email and phone uniqueness
	CreateUserWithProfile(ctx context.Context, user *schema.User) error
	// GetUserByEmail retrieves a user by email
	GetUserByEmail(ctx context.Context, email string) (*schema.User, error)
	// GetUserByID retrieves a user by id
	GetUserByID(ctx context.Context, userID uint64) (*schema.User, error)
	// SetUserMethodChoice persists the has-credit-history flag and consent on the user
	SetUserMethodChoice(ctx context.Context, userID uint64, choice MethodChoice) error
	// SetUserLedgerProfileTx stores the ledger profile bootstrap transaction reference
	SetUserLedgerProfileTx(ctx context.Context, userID uint64, txRef string) error

	// GetProfile retrieves the profile of a user
	GetProfile(ctx context.Context, userID uint64) (*schema.UserProfile, error)
	// UpsertProfile creates the profile with the supplied fields when absent,
	// otherwise overwrites only the supplied fields
	UpsertProfile(ctx context.Context, userID uint64, update ProfileUpdate) (*schema.UserProfile, error)

	// CreateCreditRequest persists a new credit request
	CreateCreditRequest(ctx context.Context, request *schema.CreditRequest) error
	// GetCreditRequest retrieves a credit request by id
	GetCreditRequest(ctx context.Context, requestID uint64) (*schema.CreditRequest, error)
	// GetCreditRequestForUser retrieves a credit request owned by the given user
	GetCreditRequestForUser(ctx context.Context, userID, requestID uint64) (*schema.CreditRequest, error)
	// FailCreditRequest transitions a processing request to failed with a reason.
	// A request already in a terminal status is left untouched.
	FailCreditRequest(ctx context.Context, requestID uint64, reason string) error
	// FinalizeCreditReport atomically inserts the report, optionally appends the
	// ledger record, updates the user's reputation score and transitions the
	// request from processing to completed
	FinalizeCreditReport(ctx context.Context, requestID uint64, report *schema.CreditReport, record *schema.BlockchainRecord) error

	// GetLatestReport retrieves the most recent report of a user
	GetLatestReport(ctx context.Context, userID uint64) (*schema.CreditReport, error)
	// GetReportForUser retrieves a report owned by the given user
	GetReportForUser(ctx context.Context, userID, reportID uint64) (*schema.CreditReport, error)
	// ListReports retrieves all reports of a user, newest first
	ListReports(ctx context.Context, userID uint64) ([]*schema.CreditReport, error)

	// CreateParserJob persists a new parser job
	CreateParserJob(ctx context.Context, job *schema.ParserJob) error
	// GetParserJobForUser retrieves a parser job owned by the given user
	GetParserJobForUser(ctx context.Context, userID, jobID uint64) (*schema.ParserJob, error)
	// CompleteParserJob transitions a job to completed with its result payload
	CompleteParserJob(ctx context.Context, jobID uint64, result datatypes.JSON) error
	// FailParserJob transitions a job to failed with a reason
	FailParserJob(ctx context.Context, jobID uint64, reason string) error

	// CreateUploadedDocument persists a new uploaded document record
	CreateUploadedDocument(ctx context.Context, doc *schema.UploadedDocument) error
	// GetDocumentForUser retrieves a document owned by the given user
	GetDocumentForUser(ctx context.Context, userID, documentID uint64) (*schema.UploadedDocument, error)
	// MarkDocumentParsed stores the parsed payload on a document and flags it parsed
	MarkDocumentParsed(ctx context.Context, documentID uint64, parsed datatypes.JSON) error
	// DeleteDocument soft-deletes a document owned by the given user
	DeleteDocument(ctx context.Context, userID, documentID uint64) error

	// ListBlockchainRecords retrieves the append-only ledger log of a user, newest first
	ListBlockchainRecords(ctx context.Context, userID uint64) ([]*schema.BlockchainRecord, error)
}
