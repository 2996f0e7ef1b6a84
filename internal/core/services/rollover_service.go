package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"wiseman-bank/internal/adapters/persistence/models"
	"wiseman-bank/internal/adapters/persistence/repositories"
	"wiseman-bank/internal/core/domain"
	"wiseman-bank/internal/pkg/monthkey"

	"gorm.io/gorm"
)

// Rollover errors
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrClockSkew        = errors.New("account watermark is ahead of the current month")
	ErrRolloverConflict = errors.New("account was rolled forward by another session")
)

// RolloverService advances loan payment schedules by however many
// calendar months have elapsed since each account's last_update
// watermark. Invoked on dashboard loads and by the monthly cron sweep.
type RolloverService struct {
	accountRepo repositories.AccountRepository
	now         func() time.Time
}

// NewRolloverService creates a new rollover service
func NewRolloverService(accountRepo repositories.AccountRepository) *RolloverService {
	return NewRolloverServiceWithClock(accountRepo, time.Now)
}

// NewRolloverServiceWithClock creates a rollover service with an
// injected clock, for deterministic tests
func NewRolloverServiceWithClock(accountRepo repositories.AccountRepository, now func() time.Time) *RolloverService {
	return &RolloverService{
		accountRepo: accountRepo,
		now:         now,
	}
}

// RollForward catches up one account to the current calendar month.
// When the watermark already equals the current month this is a no-op,
// which is what keeps repeated dashboard loads from double-charging.
func (s *RolloverService) RollForward(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	current := monthkey.Current(s.now())
	if account.LastUpdate == current.String() {
		return account, nil
	}

	// First-ever visit: start the watermark at the current month
	// without posting any history.
	if account.LastUpdate == "" {
		if err := s.commit(ctx, account, current.String()); err != nil {
			return nil, err
		}
		return account, nil
	}

	last, err := monthkey.Parse(account.LastUpdate)
	if err != nil {
		return nil, fmt.Errorf("account %s has malformed watermark: %w", account.ID, err)
	}

	monthsElapsed := monthkey.Diff(last, current)
	if monthsElapsed < 0 {
		// Clock skew or a hand-edited watermark. Refuse to post
		// history for months that have not happened.
		return nil, ErrClockSkew
	}

	for i := range account.Loans {
		advanceLoan(&account.Loans[i], last, monthsElapsed)
	}

	if err := s.commit(ctx, account, current.String()); err != nil {
		return nil, err
	}

	log.Printf("📅 Rolled account %s forward %d month(s) to %s", account.ID, monthsElapsed, current.String())
	return account, nil
}

// RollForwardAll sweeps every customer account. Conflicts mean another
// session already did the work, so the account is re-read and kept.
// Other per-account failures are logged and skipped so one bad account
// does not starve the admin dashboard.
func (s *RolloverService) RollForwardAll(ctx context.Context) ([]*models.Account, error) {
	accounts, err := s.accountRepo.ListByRole(ctx, domain.RoleUser.String())
	if err != nil {
		return nil, err
	}

	processed := make([]*models.Account, 0, len(accounts))
	for _, account := range accounts {
		rolled, err := s.RollForward(ctx, account.ID)
		if errors.Is(err, ErrRolloverConflict) {
			rolled, err = s.accountRepo.GetByID(ctx, account.ID)
		}
		if err != nil {
			log.Printf("❌ Rollover failed for account %s: %v", account.ID, err)
			continue
		}
		processed = append(processed, rolled)
	}

	return processed, nil
}

// commit persists the account's loans and moves the watermark in one
// transaction, keyed on the watermark value the account was read with.
func (s *RolloverService) commit(ctx context.Context, account *models.Account, newWatermark string) error {
	err := s.accountRepo.CommitRollover(ctx, account.ID, account.LastUpdate, newWatermark, account.Loans)
	if err != nil {
		if errors.Is(err, repositories.ErrWatermarkConflict) {
			return ErrRolloverConflict
		}
		return err
	}
	account.LastUpdate = newWatermark
	return nil
}

// advanceLoan posts one catch-up entry per elapsed month on a Progress
// loan. Each step charges the fixed EMI: interest accrues on the
// balance as it stood before the payment, the payment date is the
// first of the simulated month, and the entry starts out Pending.
// The loan closes, and the loop stops, the first step its remaining
// duration or balance reaches zero.
func advanceLoan(loan *models.Loan, last monthkey.Key, monthsElapsed int) {
	if loan.Status != models.LoanStatusProgress {
		return
	}

	month := last
	for i := 0; i < monthsElapsed; i++ {
		month = month.Next()

		loan.PaymentAmounts = append(loan.PaymentAmounts, loan.CurrEMI)
		loan.PaymentDates = append(loan.PaymentDates, month.FirstOfMonth())
		loan.PaymentStatuses = append(loan.PaymentStatuses, models.PaymentStatusPending)

		interest := loan.CurrBalance * loan.CurrInterestRate / 1200
		loan.PaymentInterests = append(loan.PaymentInterests, interest)

		loan.CurrBalance = loan.CurrBalance*(1+loan.CurrInterestRate/1200) - loan.CurrEMI
		loan.CurrDuration--

		if loan.CurrDuration <= 0 || loan.CurrBalance <= 0 {
			loan.Status = models.LoanStatusClosed
			break
		}
	}
}
