package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Accounts & Auth Tables
// ============================================================

// Account status
const (
	AccountStatusActive  = "Active"
	AccountStatusDeleted = "Deleted"
)

// Account represents accounts table (one customer, or the administrator)
type Account struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100;not null" json:"last_name"`
	Email     string `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string `gorm:"size:255;not null" json:"-"`
	Role      string `gorm:"size:20;default:'USER'" json:"role"`
	Status    string `gorm:"size:20;default:'Active'" json:"status"`

	// LastUpdate is the "M/YYYY" watermark of the last month the
	// account's loans were rolled forward. Empty until first visit.
	LastUpdate string `gorm:"size:10;default:''" json:"last_update"`

	Loans []Loan `gorm:"foreignKey:AccountID;references:ID" json:"loans,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

// AccountResponse DTO
type AccountResponse struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	LastUpdate string    `json:"last_update"`
	CreatedAt  time.Time `json:"created_at"`
}

func (a *Account) ToResponse() *AccountResponse {
	return &AccountResponse{
		ID:         a.ID,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Email:      a.Email,
		Role:       a.Role,
		Status:     a.Status,
		LastUpdate: a.LastUpdate,
		CreatedAt:  a.CreatedAt,
	}
}

// ActiveLoanCount counts loans that still need resolution before the
// account can be removed
func (a *Account) ActiveLoanCount() int {
	count := 0
	for i := range a.Loans {
		if a.Loans[i].IsActive() {
			count++
		}
	}
	return count
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	AccountID string     `gorm:"size:36;index;not null" json:"account_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	Account   Account    `gorm:"foreignKey:AccountID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Loans
// ============================================================

// Loan status
const (
	LoanStatusApproved    = "Approved"
	LoanStatusProgress    = "Progress"
	LoanStatusClosed      = "Closed"
	LoanStatusProgressExt = "Progress-Ext"
	LoanStatusClosedExt   = "Closed-Ext"
	LoanStatusClosedFC    = "Closed-FC"
	LoanStatusLost        = "Lost"
)

// Payment status (per posted payment-history entry)
const (
	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"
)

// Loan represents loans table. The four Payment* sequences are
// parallel: index i across all four describes one posted payment
// event, and they are always equal length.
type Loan struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	AccountID string `gorm:"size:36;not null;uniqueIndex:idx_account_loan" json:"account_id"`
	LoanID    string `gorm:"size:8;not null;uniqueIndex:idx_account_loan" json:"loan_id"`

	// Original terms, immutable after creation
	StartDate      string  `gorm:"size:10" json:"start_date"`
	Principal      float64 `gorm:"type:decimal(15,2);not null" json:"principal"`
	InterestRate   float64 `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	DurationMonths int     `gorm:"not null" json:"duration_months"`

	// Running state advanced by the rollover engine
	CurrBalance      float64 `gorm:"type:decimal(15,2);not null" json:"curr_balance"`
	CurrInterestRate float64 `gorm:"type:decimal(5,2);not null" json:"curr_interest_rate"`
	CurrEMI          float64 `gorm:"type:decimal(15,2);not null" json:"curr_emi"`
	CurrDuration     int     `gorm:"not null" json:"curr_duration"`

	Status string `gorm:"size:20;default:'Progress'" json:"status"`

	PaymentAmounts   []float64 `gorm:"serializer:json" json:"payment_amounts"`
	PaymentDates     []string  `gorm:"serializer:json" json:"payment_dates"`
	PaymentInterests []float64 `gorm:"serializer:json" json:"payment_interests"`
	PaymentStatuses  []string  `gorm:"serializer:json" json:"payment_statuses"`

	// Mutated only by admin actions, never by the rollover engine
	ExtensionMonths   int `gorm:"default:0" json:"extension_months"`
	ForeclosureMonths int `gorm:"default:0" json:"foreclosure_months"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string {
	return "loans"
}

// IsActive reports whether the loan still counts against its owner
// for removal purposes
func (l *Loan) IsActive() bool {
	return l.Status == LoanStatusProgress ||
		l.Status == LoanStatusProgressExt ||
		l.Status == LoanStatusApproved
}

// PaidOff sums every posted payment amount
func (l *Loan) PaidOff() float64 {
	total := 0.0
	for _, amount := range l.PaymentAmounts {
		total += amount
	}
	return total
}

// ============================================================
// Bank Settings (single row)
// ============================================================

// BankSettings represents bank_settings table: the shared bank
// balance and the referral code required at sign-up
type BankSettings struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Balance      float64   `gorm:"type:decimal(15,2);default:0" json:"balance"`
	ReferralCode string    `gorm:"size:50;not null" json:"referral_code"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BankSettings) TableName() string {
	return "bank_settings"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Account{},
		&RefreshToken{},
		&Loan{},
		&BankSettings{},
	)
}
