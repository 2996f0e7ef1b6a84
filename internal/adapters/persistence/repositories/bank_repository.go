package repositories

import (
	"context"

	"wiseman-bank/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// bankRepository implements BankRepository interface
type bankRepository struct {
	db *gorm.DB
}

// NewBankRepository creates a new bank settings repository
func NewBankRepository(db *gorm.DB) BankRepository {
	return &bankRepository{db: db}
}

// Get returns the single bank settings row
func (r *bankRepository) Get(ctx context.Context) (*models.BankSettings, error) {
	var settings models.BankSettings
	err := r.db.WithContext(ctx).First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateBalance sets the shared bank balance
func (r *bankRepository) UpdateBalance(ctx context.Context, balance float64) error {
	return r.db.WithContext(ctx).
		Model(&models.BankSettings{}).
		Where("1 = 1").
		Update("balance", balance).Error
}

// Credit adds an amount to the shared bank balance
func (r *bankRepository) Credit(ctx context.Context, amount float64) error {
	return r.db.WithContext(ctx).
		Model(&models.BankSettings{}).
		Where("1 = 1").
		Update("balance", gorm.Expr("balance + ?", amount)).Error
}

// UpdateReferralCode sets the sign-up referral code
func (r *bankRepository) UpdateReferralCode(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).
		Model(&models.BankSettings{}).
		Where("1 = 1").
		Update("referral_code", code).Error
}
