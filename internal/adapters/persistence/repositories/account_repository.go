package repositories

import (
	"context"

	"wiseman-bank/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// accountRepository implements AccountRepository interface
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create creates a new account
func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// GetByID gets an account by ID with its loans loaded
func (r *accountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Preload("Loans", func(db *gorm.DB) *gorm.DB { return db.Order("loans.id ASC") }).
		Where("id = ?", id).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByEmail gets an account by email
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Preload("Loans", func(db *gorm.DB) *gorm.DB { return db.Order("loans.id ASC") }).
		Where("email = ?", email).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Update updates an account
func (r *accountRepository) Update(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Omit("Loans").Save(account).Error
}

// List lists customer accounts with pagination
func (r *accountRepository) List(ctx context.Context, offset, limit int) ([]*models.Account, int64, error) {
	var accounts []*models.Account
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Account{}).Where("role = ?", "USER").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Loans", func(db *gorm.DB) *gorm.DB { return db.Order("loans.id ASC") }).
		Where("role = ?", "USER").
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&accounts).Error
	if err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}

// ListByRole lists all accounts with a given role, loans included
func (r *accountRepository) ListByRole(ctx context.Context, role string) ([]*models.Account, error) {
	var accounts []*models.Account
	err := r.db.WithContext(ctx).
		Preload("Loans", func(db *gorm.DB) *gorm.DB { return db.Order("loans.id ASC") }).
		Where("role = ?", role).
		Order("created_at ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// ExistsByEmail checks if email exists
func (r *accountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Account{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// CommitRollover persists advanced loans and the new watermark atomically.
// The watermark update doubles as the optimistic-concurrency check: zero
// rows affected means another session committed first.
func (r *accountRepository) CommitRollover(ctx context.Context, accountID, expectedWatermark, newWatermark string, loans []models.Loan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Account{}).
			Where("id = ? AND last_update = ?", accountID, expectedWatermark).
			Update("last_update", newWatermark)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrWatermarkConflict
		}

		for i := range loans {
			if err := tx.Save(&loans[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// AddLoan appends a new loan to its account
func (r *accountRepository) AddLoan(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetLoan gets one loan by its owning account and loan token
func (r *accountRepository) GetLoan(ctx context.Context, accountID, loanID string) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND loan_id = ?", accountID, loanID).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// UpdateLoan updates a loan
func (r *accountRepository) UpdateLoan(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}
