package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kamilakurskaa/TrustFlow/internal/domain"
	"github.com/kamilakurskaa/TrustFlow/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new store backed by the given GORM connection
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to reasonable defaults.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// CreateUserWithProfile creates the user and its empty profile in one transaction
func (s *pgStore) CreateUserWithProfile(ctx context.Context, user *schema.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&schema.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check email uniqueness: %w", err)
		}
		if count > 0 {
			return domain.ErrEmailTaken
		}

		if user.Phone != nil && *user.Phone != "" {
			if err := tx.Model(&schema.User{}).Where("phone = ?", *user.Phone).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check phone uniqueness: %w", err)
			}
			if count > 0 {
				return domain.ErrPhoneTaken
			}
		}

		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		profile := schema.UserProfile{UserID: user.ID}
		if err := tx.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}

		return nil
	})
}

// GetUserByEmail retrieves a user by email
func (s *pgStore) GetUserByEmail(ctx context.Context, email string) (*schema.User, error) {
	var user schema.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by id
func (s *pgStore) GetUserByID(ctx context.Context, userID uint64) (*schema.User, error) {
	var user schema.User
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// SetUserMethodChoice persists the has-credit-history flag and consent on the user
func (s *pgStore) SetUserMethodChoice(ctx context.Context, userID uint64, choice MethodChoice) error {
	updates := map[string]interface{}{
		"consent_data_processing": choice.ConsentDataProcessing,
	}
	if choice.HasCreditHistory != nil {
		updates["has_credit_history"] = *choice.HasCreditHistory
	}

	err := s.db.WithContext(ctx).
		Model(&schema.User{}).
		Where("id = ?", userID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to set method choice: %w", err)
	}
	return nil
}

// SetUserLedgerProfileTx stores the ledger profile bootstrap transaction reference
func (s *pgStore) SetUserLedgerProfileTx(ctx context.Context, userID uint64, txRef string) error {
	err := s.db.WithContext(ctx).
		Model(&schema.User{}).
		Where("id = ?", userID).
		Update("ledger_profile_tx", txRef).Error
	if err != nil {
		return fmt.Errorf("failed to set ledger profile tx: %w", err)
	}
	return nil
}

// GetProfile retrieves the profile of a user
func (s *pgStore) GetProfile(ctx context.Context, userID uint64) (*schema.UserProfile, error) {
	var profile schema.UserProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// UpsertProfile creates the profile when absent, otherwise overwrites only the supplied fields
func (s *pgStore) UpsertProfile(ctx context.Context, userID uint64, update ProfileUpdate) (*schema.UserProfile, error) {
	var profile schema.UserProfile

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = schema.UserProfile{
				UserID:           userID,
				DateOfBirth:      update.DateOfBirth,
				Address:          update.Address,
				EmploymentStatus: update.EmploymentStatus,
				MonthlyIncome:    update.MonthlyIncome,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return fmt.Errorf("failed to create profile: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get profile: %w", err)
		}

		updates := map[string]interface{}{}
		if update.DateOfBirth != nil {
			updates["date_of_birth"] = *update.DateOfBirth
		}
		if update.Address != nil {
			updates["address"] = *update.Address
		}
		if update.EmploymentStatus != nil {
			updates["employment_status"] = *update.EmploymentStatus
		}
		if update.MonthlyIncome != nil {
			updates["monthly_income"] = *update.MonthlyIncome
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&profile).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		return tx.Where("user_id = ?", userID).First(&profile).Error
	})
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// CreateCreditRequest persists a new credit request
func (s *pgStore) CreateCreditRequest(ctx context.Context, request *schema.CreditRequest) error {
	if err := s.db.WithContext(ctx).Create(request).Error; err != nil {
		return fmt.Errorf("failed to create credit request: %w", err)
	}
	return nil
}

// GetCreditRequest retrieves a credit request by id
func (s *pgStore) GetCreditRequest(ctx context.Context, requestID uint64) (*schema.CreditRequest, error) {
	var request schema.CreditRequest
	err := s.db.WithContext(ctx).Where("id = ?", requestID).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get credit request: %w", err)
	}
	return &request, nil
}

// GetCreditRequestForUser retrieves a credit request owned by the given user
func (s *pgStore) GetCreditRequestForUser(ctx context.Context, userID, requestID uint64) (*schema.CreditRequest, error) {
	var request schema.CreditRequest
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", requestID, userID).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get credit request: %w", err)
	}
	return &request, nil
}

// FailCreditRequest transitions a processing request to failed with a reason.
// The status guard makes the transition single-writer: a request that already
// reached a terminal status is left untouched.
func (s *pgStore) FailCreditRequest(ctx context.Context, requestID uint64, reason string) error {
	now := time.Now()
	err := s.db.WithContext(ctx).
		Model(&schema.CreditRequest{}).
		Where("id = ? AND status = ?", requestID, domain.RequestStatusProcessing).
		Updates(map[string]interface{}{
			"status":        domain.RequestStatusFailed,
			"error_message": reason,
			"completed_at":  now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to fail credit request: %w", err)
	}
	return nil
}

// FinalizeCreditReport atomically persists the outcome of a scoring run
func (s *pgStore) FinalizeCreditReport(ctx context.Context, requestID uint64, report *schema.CreditReport, record *schema.BlockchainRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}

		ledgerRecorded := false
		if record != nil {
			if err := tx.Create(record).Error; err != nil {
				return fmt.Errorf("failed to create ledger record: %w", err)
			}
			ledgerRecorded = true
		}

		// Last write wins on the user's reputation score when requests race.
		if err := tx.Model(&schema.User{}).
			Where("id = ?", report.UserID).
			Update("reputation_score", report.ReputationScore).Error; err != nil {
			return fmt.Errorf("failed to update reputation: %w", err)
		}

		now := time.Now()
		result := tx.Model(&schema.CreditRequest{}).
			Where("id = ? AND status = ?", requestID, domain.RequestStatusProcessing).
			Updates(map[string]interface{}{
				"status":          domain.RequestStatusCompleted,
				"ledger_recorded": ledgerRecorded,
				"completed_at":    now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to complete credit request: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("credit request %d is not in processing state", requestID)
		}

		return nil
	})
}

// GetLatestReport retrieves the most recent report of a user
func (s *pgStore) GetLatestReport(ctx context.Context, userID uint64) (*schema.CreditReport, error) {
	var report schema.CreditReport
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}
	return &report, nil
}

// GetReportForUser retrieves a report owned by the given user
func (s *pgStore) GetReportForUser(ctx context.Context, userID, reportID uint64) (*schema.CreditReport, error) {
	var report schema.CreditReport
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", reportID, userID).
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &report, nil
}

// ListReports retrieves all reports of a user, newest first
func (s *pgStore) ListReports(ctx context.Context, userID uint64) ([]*schema.CreditReport, error) {
	var reports []*schema.CreditReport
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// CreateParserJob persists a new parser job
func (s *pgStore) CreateParserJob(ctx context.Context, job *schema.ParserJob) error {
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create parser job: %w", err)
	}
	return nil
}

// GetParserJobForUser retrieves a parser job owned by the given user
func (s *pgStore) GetParserJobForUser(ctx context.Context, userID, jobID uint64) (*schema.ParserJob, error) {
	var job schema.ParserJob
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", jobID, userID).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get parser job: %w", err)
	}
	return &job, nil
}

// CompleteParserJob transitions a job to completed with its result payload
func (s *pgStore) CompleteParserJob(ctx context.Context, jobID uint64, result datatypes.JSON) error {
	now := time.Now()
	err := s.db.WithContext(ctx).
		Model(&schema.ParserJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":       domain.RequestStatusCompleted,
			"result_data":  result,
			"completed_at": now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to complete parser job: %w", err)
	}
	return nil
}

// FailParserJob transitions a job to failed with a reason
func (s *pgStore) FailParserJob(ctx context.Context, jobID uint64, reason string) error {
	now := time.Now()
	err := s.db.WithContext(ctx).
		Model(&schema.ParserJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":        domain.RequestStatusFailed,
			"error_message": reason,
			"completed_at":  now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to fail parser job: %w", err)
	}
	return nil
}

// CreateUploadedDocument persists a new uploaded document record
func (s *pgStore) CreateUploadedDocument(ctx context.Context, doc *schema.UploadedDocument) error {
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("failed to create uploaded document: %w", err)
	}
	return nil
}

// GetDocumentForUser retrieves a document owned by the given user
func (s *pgStore) GetDocumentForUser(ctx context.Context, userID, documentID uint64) (*schema.UploadedDocument, error) {
	var doc schema.UploadedDocument
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", documentID, userID).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// MarkDocumentParsed stores the parsed payload on a document and flags it parsed
func (s *pgStore) MarkDocumentParsed(ctx context.Context, documentID uint64, parsed datatypes.JSON) error {
	err := s.db.WithContext(ctx).
		Model(&schema.UploadedDocument{}).
		Where("id = ?", documentID).
		Updates(map[string]interface{}{
			"parsed_data": parsed,
			"is_parsed":   true,
			"status":      domain.RequestStatusCompleted,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark document parsed: %w", err)
	}
	return nil
}

// DeleteDocument soft-deletes a document owned by the given user
func (s *pgStore) DeleteDocument(ctx context.Context, userID, documentID uint64) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", documentID, userID).
		Delete(&schema.UploadedDocument{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListBlockchainRecords retrieves the append-only ledger log of a user, newest first
func (s *pgStore) ListBlockchainRecords(ctx context.Context, userID uint64) ([]*schema.BlockchainRecord, error) {
	var records []*schema.BlockchainRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger records: %w", err)
	}
	return records, nil
}
