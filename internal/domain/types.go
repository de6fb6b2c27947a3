package domain

// RequestStatus represents the lifecycle status of a credit request or parser job
type RequestStatus string

const (
	// RequestStatusPending is the status of a request that has been created but not yet scheduled
	RequestStatusPending RequestStatus = "pending"
	// RequestStatusProcessing is the status of a request whose computation is in flight
	RequestStatusProcessing RequestStatus = "processing"
	// RequestStatusCompleted is the terminal status of a successfully computed request
	RequestStatusCompleted RequestStatus = "completed"
	// RequestStatusFailed is the terminal status of a request whose computation failed
	RequestStatusFailed RequestStatus = "failed"
)

// Terminal reports whether the status is a terminal state
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusFailed
}

// ScoreCategory buckets a numeric credit score into a named band
type ScoreCategory string

const (
	// ScoreCategoryExcellent covers scores of 720 and above
	ScoreCategoryExcellent ScoreCategory = "excellent"
	// ScoreCategoryGood covers scores in [680, 720)
	ScoreCategoryGood ScoreCategory = "good"
	// ScoreCategoryFair covers scores in [620, 680)
	ScoreCategoryFair ScoreCategory = "fair"
	// ScoreCategoryPoor covers scores in [580, 620)
	ScoreCategoryPoor ScoreCategory = "poor"
	// ScoreCategoryBad covers scores below 580
	ScoreCategoryBad ScoreCategory = "bad"
)

const (
	// ScoreMin is the lowest score the reference scorer produces
	ScoreMin = 300
	// ScoreMax is the highest score the reference scorer produces, and the
	// denominator used to normalize a score into a reputation value
	ScoreMax = 850
)

// CategorizeScore maps a score onto its category band
func CategorizeScore(score int) ScoreCategory {
	switch {
	case score >= 720:
		return ScoreCategoryExcellent
	case score >= 680:
		return ScoreCategoryGood
	case score >= 620:
		return ScoreCategoryFair
	case score >= 580:
		return ScoreCategoryPoor
	default:
		return ScoreCategoryBad
	}
}

// ReputationFromScore normalizes a score into the [0, 1] reputation value
// stored on the user record
func ReputationFromScore(score int) float64 {
	return float64(score) / float64(ScoreMax)
}

// DocumentType identifies the origin of an uploaded document
type DocumentType string

const (
	// DocumentTypeGosuslugi is a PDF statement exported from the state services portal
	DocumentTypeGosuslugi DocumentType = "gosuslugi"
	// DocumentTypeBankStatement is a bank account statement
	DocumentTypeBankStatement DocumentType = "bank_statement"
	// DocumentTypePassport is an identity document scan
	DocumentTypePassport DocumentType = "passport"
)

// LedgerDataType identifies what kind of payload a ledger record fingerprints
type LedgerDataType string

const (
	// LedgerDataTypeCreditReport marks a record fingerprinting a credit report payload
	LedgerDataTypeCreditReport LedgerDataType = "credit_report"
	// LedgerDataTypeUserConsent marks a record fingerprinting a consent payload
	LedgerDataTypeUserConsent LedgerDataType = "user_consent"
	// LedgerDataTypeUserProfile marks a record fingerprinting a profile bootstrap payload
	LedgerDataTypeUserProfile LedgerDataType = "user_profile"
)
