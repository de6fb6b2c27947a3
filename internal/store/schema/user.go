package schema

import (
	"time"
)

// User represents the users table - the identity record every other entity hangs off
type User struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Email is the unique login identifier
	Email string `gorm:"column:email;not null;uniqueIndex;type:text"`
	// PasswordHash is the argon2id hash of the user's password, never the password itself
	PasswordHash string `gorm:"column:password_hash;not null;type:text"`
	// FullName is the user's self-reported display name
	FullName *string `gorm:"column:full_name;type:text"`
	// Phone is the optional unique contact number
	Phone *string `gorm:"column:phone;uniqueIndex;type:text"`
	// IsActive indicates whether the account can authenticate
	IsActive bool `gorm:"column:is_active;not null;default:true"`
	// IsVerified indicates whether the account passed identity verification
	IsVerified bool `gorm:"column:is_verified;not null;default:false"`
	// ReputationScore is the normalized score (score/850) from the latest completed report
	ReputationScore float64 `gorm:"column:reputation_score;not null;default:0"`
	// WalletAddress is the optional blockchain wallet used for ledger recording
	WalletAddress *string `gorm:"column:wallet_address;type:text"`
	// ConsentDataProcessing records whether the user consented to external data processing
	ConsentDataProcessing bool `gorm:"column:consent_data_processing;not null;default:false"`
	// HasCreditHistory is the self-reported tri-state credit history flag (nil = not answered)
	HasCreditHistory *bool `gorm:"column:has_credit_history"`
	// LedgerProfileTx is the transaction reference of the ledger profile bootstrap, if any
	LedgerProfileTx *string `gorm:"column:ledger_profile_tx;type:text"`
	// CreatedAt is the timestamp when the account was registered
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	// UpdatedAt is the timestamp when the account was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`

	// Associations
	Profile           *UserProfile       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreditRequests    []CreditRequest    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreditReports     []CreditReport     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ParserJobs        []ParserJob        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	UploadedDocuments []UploadedDocument `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	BlockchainRecords []BlockchainRecord `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
