package repositories

import (
	"context"
	"errors"

	"wiseman-bank/internal/adapters/persistence/models"
)

// ErrWatermarkConflict is returned when a rollover commit finds the
// account's last_update no longer matching the value it was read with
// (another session rolled the account forward first).
var ErrWatermarkConflict = errors.New("account watermark changed since read")

// AccountRepository defines account repository interface
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	List(ctx context.Context, offset, limit int) ([]*models.Account, int64, error)
	ListByRole(ctx context.Context, role string) ([]*models.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// CommitRollover persists an account's advanced loans and its new
	// watermark in one transaction, conditioned on the watermark the
	// caller read. Returns ErrWatermarkConflict on a stale read.
	CommitRollover(ctx context.Context, accountID, expectedWatermark, newWatermark string, loans []models.Loan) error

	AddLoan(ctx context.Context, loan *models.Loan) error
	GetLoan(ctx context.Context, accountID, loanID string) (*models.Loan, error)
	UpdateLoan(ctx context.Context, loan *models.Loan) error
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByAccountID(ctx context.Context, accountID string) error
	DeleteExpired(ctx context.Context) error
}

// BankRepository defines bank settings repository interface.
// bank_settings is a single-row table.
type BankRepository interface {
	Get(ctx context.Context) (*models.BankSettings, error)
	UpdateBalance(ctx context.Context, balance float64) error
	Credit(ctx context.Context, amount float64) error
	UpdateReferralCode(ctx context.Context, code string) error
}
