package schema

import (
	"time"
)

// UserProfile represents the user_profiles table - a 1:1 extension of User
// holding self-reported demographic and financial fields
type UserProfile struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// UserID is the owning user
	UserID uint64 `gorm:"column:user_id;not null;uniqueIndex"`
	// DateOfBirth is the self-reported date of birth (free-form string, as submitted)
	DateOfBirth *string `gorm:"column:date_of_birth;type:text"`
	// Address is the self-reported residential address
	Address *string `gorm:"column:address;type:text"`
	// EmploymentStatus is the self-reported employment status
	EmploymentStatus *string `gorm:"column:employment_status;type:text"`
	// MonthlyIncome is the self-reported monthly income
	MonthlyIncome *int64 `gorm:"column:monthly_income"`
	// CreatedAt is the timestamp when the profile was created
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	// UpdatedAt is the timestamp when the profile was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName specifies the table name for the UserProfile model
func (UserProfile) TableName() string {
	return "user_profiles"
}
