// Package dto defines the request and response bodies of the REST API and
// their mappings from the schema models.
package dto

import (
	"encoding/json"
	"time"

	"github.com/kamilakurskaa/TrustFlow/internal/domain"
	"github.com/kamilakurskaa/TrustFlow/internal/ledger"
	"github.com/kamilakurskaa/TrustFlow/internal/store/schema"
)

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Email         string  `json:"email" binding:"required,email"`
	Password      string  `json:"password" binding:"required,min=8"`
	FullName      *string `json:"full_name"`
	Phone         *string `json:"phone"`
	WalletAddress *string `json:"wallet_address"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest is the body of PUT /api/users/profile.
// Absent fields leave the stored profile untouched.
type UpdateProfileRequest struct {
	DateOfBirth      *string `json:"date_of_birth"`
	Address          *string `json:"address"`
	EmploymentStatus *string `json:"employment_status"`
	MonthlyIncome    *int64  `json:"monthly_income"`
}

// ChooseMethodRequest is the body of POST /api/credit/choose-method
type ChooseMethodRequest struct {
	HasCreditHistory      *bool `json:"has_credit_history"`
	ConsentDataProcessing bool  `json:"consent_data_processing"`
}

// SubmitCreditRequest is the body of POST /api/credit/request
type SubmitCreditRequest struct {
	UseBlockchain    bool     `json:"use_blockchain"`
	DataSources      []string `json:"data_sources"`
	SourceDocumentID *uint64  `json:"source_document_id"`
}

// ProcessParsingRequest is the body of POST /api/credit/process-parsing
type ProcessParsingRequest struct {
	DataSource string `json:"data_source" binding:"required"`
}

// User is the public representation of an account
type User struct {
	ID                    uint64    `json:"id"`
	Email                 string    `json:"email"`
	FullName              *string   `json:"full_name"`
	Phone                 *string   `json:"phone"`
	IsActive              bool      `json:"is_active"`
	IsVerified            bool      `json:"is_verified"`
	ReputationScore       float64   `json:"reputation_score"`
	WalletAddress         *string   `json:"wallet_address"`
	ConsentDataProcessing bool      `json:"consent_data_processing"`
	HasCreditHistory      *bool     `json:"has_credit_history"`
	LedgerProfileTx       *string   `json:"ledger_profile_tx"`
	CreatedAt             time.Time `json:"created_at"`
}

// FromUser maps a schema user to its public representation
func FromUser(user *schema.User) User {
	return User{
		ID:                    user.ID,
		Email:                 user.Email,
		FullName:              user.FullName,
		Phone:                 user.Phone,
		IsActive:              user.IsActive,
		IsVerified:            user.IsVerified,
		ReputationScore:       user.ReputationScore,
		WalletAddress:         user.WalletAddress,
		ConsentDataProcessing: user.ConsentDataProcessing,
		HasCreditHistory:      user.HasCreditHistory,
		LedgerProfileTx:       user.LedgerProfileTx,
		CreatedAt:             user.CreatedAt,
	}
}

// Login is the response of POST /api/auth/login
type Login struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// Profile is the public representation of a user profile
type Profile struct {
	UserID           uint64    `json:"user_id"`
	DateOfBirth      *string   `json:"date_of_birth"`
	Address          *string   `json:"address"`
	EmploymentStatus *string   `json:"employment_status"`
	MonthlyIncome    *int64    `json:"monthly_income"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FromProfile maps a schema profile to its public representation
func FromProfile(profile *schema.UserProfile) Profile {
	return Profile{
		UserID:           profile.UserID,
		DateOfBirth:      profile.DateOfBirth,
		Address:          profile.Address,
		EmploymentStatus: profile.EmploymentStatus,
		MonthlyIncome:    profile.MonthlyIncome,
		UpdatedAt:        profile.UpdatedAt,
	}
}

// Completeness returns the filled fraction of the profile fields
func (p Profile) Completeness() float64 {
	filled := 0
	if p.DateOfBirth != nil {
		filled++
	}
	if p.Address != nil {
		filled++
	}
	if p.EmploymentStatus != nil {
		filled++
	}
	if p.MonthlyIncome != nil {
		filled++
	}
	return float64(filled) / 4
}

// UserWithRating is the response of GET /api/users/me/with-rating
type UserWithRating struct {
	User                User    `json:"user"`
	LedgerRating        int64   `json:"blockchain_rating"`
	ProfileCompleteness float64 `json:"profile_completeness"`
}

// CreditRequest is the public representation of a scoring attempt
type CreditRequest struct {
	ID             uint64               `json:"id"`
	UserID         uint64               `json:"user_id"`
	Status         domain.RequestStatus `json:"status"`
	UseBlockchain  bool                 `json:"use_blockchain"`
	LedgerRecorded bool                 `json:"ledger_recorded"`
	ErrorMessage   *string              `json:"error_message"`
	CreatedAt      time.Time            `json:"created_at"`
	CompletedAt    *time.Time           `json:"completed_at"`
}

// FromCreditRequest maps a schema credit request to its public representation
func FromCreditRequest(request *schema.CreditRequest) CreditRequest {
	return CreditRequest{
		ID:             request.ID,
		UserID:         request.UserID,
		Status:         request.Status,
		UseBlockchain:  request.UseLedger,
		LedgerRecorded: request.LedgerRecorded,
		ErrorMessage:   request.ErrorMessage,
		CreatedAt:      request.CreatedAt,
		CompletedAt:    request.CompletedAt,
	}
}

// CreditReport is the public representation of a scoring result
type CreditReport struct {
	ID                uint64               `json:"id"`
	UserID            uint64               `json:"user_id"`
	Score             int                  `json:"score"`
	ScoreCategory     domain.ScoreCategory `json:"score_category"`
	ReputationScore   float64              `json:"reputation_score"`
	ReportData        json.RawMessage      `json:"report_data,omitempty"`
	LedgerFingerprint *string              `json:"ledger_fingerprint"`
	TransactionHash   *string              `json:"transaction_hash"`
	BlockNumber       *int64               `json:"block_number"`
	SourceDocumentID  *uint64              `json:"source_document_id"`
	CreatedAt         time.Time            `json:"created_at"`
}

// FromCreditReport maps a schema credit report to its public representation
func FromCreditReport(report *schema.CreditReport) CreditReport {
	return CreditReport{
		ID:                report.ID,
		UserID:            report.UserID,
		Score:             report.Score,
		ScoreCategory:     report.ScoreCategory,
		ReputationScore:   report.ReputationScore,
		ReportData:        json.RawMessage(report.ReportData),
		LedgerFingerprint: report.LedgerFingerprint,
		TransactionHash:   report.TransactionHash,
		BlockNumber:       report.BlockNumber,
		SourceDocumentID:  report.SourceDocumentID,
		CreatedAt:         report.CreatedAt,
	}
}

// Document is the public representation of an uploaded document
type Document struct {
	ID           uint64               `json:"id"`
	UserID       uint64               `json:"user_id"`
	Filename     string               `json:"filename"`
	FileSize     int64                `json:"file_size"`
	MimeType     string               `json:"mime_type"`
	DocumentType domain.DocumentType  `json:"document_type"`
	IsParsed     bool                 `json:"is_parsed"`
	Status       domain.RequestStatus `json:"status"`
	CreatedAt    time.Time            `json:"created_at"`
}

// FromDocument maps a schema document to its public representation
func FromDocument(doc *schema.UploadedDocument) Document {
	return Document{
		ID:           doc.ID,
		UserID:       doc.UserID,
		Filename:     doc.Filename,
		FileSize:     doc.FileSize,
		MimeType:     doc.MimeType,
		DocumentType: doc.DocumentType,
		IsParsed:     doc.IsParsed,
		Status:       doc.Status,
		CreatedAt:    doc.CreatedAt,
	}
}

// ParserJob is the public representation of a parsing attempt
type ParserJob struct {
	ID           uint64               `json:"id"`
	UserID       uint64               `json:"user_id"`
	Status       domain.RequestStatus `json:"status"`
	DataSource   string               `json:"data_source"`
	DocumentID   *uint64              `json:"document_id"`
	ResultData   json.RawMessage      `json:"result_data,omitempty"`
	ErrorMessage *string              `json:"error_message"`
	CreatedAt    time.Time            `json:"created_at"`
	CompletedAt  *time.Time           `json:"completed_at"`
}

// FromParserJob maps a schema parser job to its public representation
func FromParserJob(job *schema.ParserJob) ParserJob {
	return ParserJob{
		ID:           job.ID,
		UserID:       job.UserID,
		Status:       job.Status,
		DataSource:   job.DataSource,
		DocumentID:   job.DocumentID,
		ResultData:   json.RawMessage(job.ResultData),
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		CompletedAt:  job.CompletedAt,
	}
}

// BlockchainRecord is the public representation of a ledger log entry
type BlockchainRecord struct {
	ID              uint64                `json:"id"`
	UserID          uint64                `json:"user_id"`
	TransactionHash string                `json:"transaction_hash"`
	BlockNumber     int64                 `json:"block_number"`
	ContractAddress string                `json:"contract_address"`
	DataHash        string                `json:"data_hash"`
	DataType        domain.LedgerDataType `json:"data_type"`
	CreatedAt       time.Time             `json:"created_at"`
}

// FromBlockchainRecord maps a schema ledger record to its public representation
func FromBlockchainRecord(record *schema.BlockchainRecord) BlockchainRecord {
	return BlockchainRecord{
		ID:              record.ID,
		UserID:          record.UserID,
		TransactionHash: record.TransactionHash,
		BlockNumber:     record.BlockNumber,
		ContractAddress: record.ContractAddress,
		DataHash:        record.DataHash,
		DataType:        record.DataType,
		CreatedAt:       record.CreatedAt,
	}
}

// BlockchainRating is the response of GET /api/credit/blockchain-rating
type BlockchainRating struct {
	LedgerRating    int64                 `json:"blockchain_rating"`
	LocalScore      *int                  `json:"local_score"`
	ReputationScore float64               `json:"reputation_score"`
	Network         *ledger.NetworkStatus `json:"network"`
}
