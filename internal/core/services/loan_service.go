package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"wiseman-bank/internal/adapters/persistence/models"
	"wiseman-bank/internal/adapters/persistence/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Loan errors
var (
	ErrLoanNotFound        = errors.New("loan not found")
	ErrLoanNotActive       = errors.New("loan is not active")
	ErrInvalidLoanInput    = errors.New("principal, rate and duration must be positive")
	ErrInvalidPaymentIndex = errors.New("payment index out of range")
	ErrPaymentNotPending   = errors.New("payment is not pending")
	ErrInvalidPayoffDay    = errors.New("payoff day must be between 1 and 31")
)

// LoanService handles loan issuance, servicing and payoff quotes
type LoanService struct {
	accountRepo repositories.AccountRepository
	bankRepo    repositories.BankRepository
	now         func() time.Time
}

// NewLoanService creates a new loan service
func NewLoanService(accountRepo repositories.AccountRepository, bankRepo repositories.BankRepository) *LoanService {
	return NewLoanServiceWithClock(accountRepo, bankRepo, time.Now)
}

// NewLoanServiceWithClock creates a loan service with an injected clock
func NewLoanServiceWithClock(accountRepo repositories.AccountRepository, bankRepo repositories.BankRepository, now func() time.Time) *LoanService {
	return &LoanService{
		accountRepo: accountRepo,
		bankRepo:    bankRepo,
		now:         now,
	}
}

// AddLoanInput represents loan issuance input
type AddLoanInput struct {
	AccountID      string  `json:"account_id" validate:"required"`
	Principal      float64 `json:"principal" validate:"required,gt=0"`
	InterestRate   float64 `json:"interest_rate" validate:"required,gt=0"`
	DurationMonths int     `json:"duration_months" validate:"required,gt=0"`
	StartDate      string  `json:"start_date"`
}

// PayoffQuote represents an early-settlement quote
type PayoffQuote struct {
	LoanID       string  `json:"loan_id"`
	Balance      float64 `json:"balance"`
	Day          int     `json:"day"`
	PayoffAmount float64 `json:"payoff_amount"`
}

// newLoanID returns an 8 character uppercase loan token
func newLoanID() string {
	id := uuid.New()
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

// AddLoan issues a new loan to an account. The monthly installment is
// the principal split evenly over the duration, and the loan starts
// accruing at the account's next rollover.
func (s *LoanService) AddLoan(ctx context.Context, input *AddLoanInput) (*models.Loan, error) {
	if input.Principal <= 0 || input.InterestRate <= 0 || input.DurationMonths <= 0 {
		return nil, ErrInvalidLoanInput
	}

	account, err := s.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	startDate := input.StartDate
	if startDate == "" {
		startDate = s.now().Format("1/2/2006")
	}

	loan := &models.Loan{
		AccountID:        account.ID,
		LoanID:           newLoanID(),
		StartDate:        startDate,
		Principal:        input.Principal,
		InterestRate:     input.InterestRate,
		DurationMonths:   input.DurationMonths,
		CurrBalance:      input.Principal,
		CurrInterestRate: input.InterestRate,
		CurrEMI:          input.Principal / float64(input.DurationMonths),
		CurrDuration:     input.DurationMonths,
		Status:           models.LoanStatusProgress,
		PaymentAmounts:   []float64{},
		PaymentDates:     []string{},
		PaymentInterests: []float64{},
		PaymentStatuses:  []string{},
	}
	if err := s.accountRepo.AddLoan(ctx, loan); err != nil {
		return nil, err
	}

	log.Printf("✅ Loan %s issued to account %s", loan.LoanID, account.ID)
	return loan, nil
}

// ExtendLoan stretches a loan's remaining schedule by extraMonths.
// The installment and balance are untouched, so the rollover keeps
// charging the same amount for longer.
func (s *LoanService) ExtendLoan(ctx context.Context, accountID, loanID string, extraMonths int) (*models.Loan, error) {
	if extraMonths <= 0 {
		return nil, ErrInvalidLoanInput
	}

	loan, err := s.getLoan(ctx, accountID, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusProgress {
		return nil, ErrLoanNotActive
	}

	loan.ExtensionMonths += extraMonths
	loan.CurrDuration += extraMonths
	if err := s.accountRepo.UpdateLoan(ctx, loan); err != nil {
		return nil, err
	}

	log.Printf("✅ Loan %s extended by %d months", loan.LoanID, extraMonths)
	return loan, nil
}

// ApprovePayment marks one pending installment as paid and credits
// the bank with its amount
func (s *LoanService) ApprovePayment(ctx context.Context, accountID, loanID string, index int) (*models.Loan, error) {
	loan, err := s.getLoan(ctx, accountID, loanID)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(loan.PaymentStatuses) {
		return nil, ErrInvalidPaymentIndex
	}
	if loan.PaymentStatuses[index] != models.PaymentStatusPending {
		return nil, ErrPaymentNotPending
	}

	loan.PaymentStatuses[index] = models.PaymentStatusPaid
	if err := s.accountRepo.UpdateLoan(ctx, loan); err != nil {
		return nil, err
	}
	if err := s.bankRepo.Credit(ctx, loan.PaymentAmounts[index]); err != nil {
		return nil, err
	}

	log.Printf("✅ Payment %d on loan %s approved", index, loan.LoanID)
	return loan, nil
}

// Payoff quotes early settlement of a loan on a given day of the
// current month: the balance plus simple interest for the days
// already elapsed.
func (s *LoanService) Payoff(ctx context.Context, accountID, loanID string, day int) (*PayoffQuote, error) {
	if day < 1 || day > 31 {
		return nil, ErrInvalidPayoffDay
	}

	loan, err := s.getLoan(ctx, accountID, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusProgress {
		return nil, ErrLoanNotActive
	}

	daysInYear := 365.0
	if s.now().Year()%4 == 0 {
		daysInYear = 366.0
	}

	amount := loan.CurrBalance * (1 + loan.CurrInterestRate*float64(day-1)/(100*daysInYear))
	return &PayoffQuote{
		LoanID:       loan.LoanID,
		Balance:      loan.CurrBalance,
		Day:          day,
		PayoffAmount: amount,
	}, nil
}

func (s *LoanService) getLoan(ctx context.Context, accountID, loanID string) (*models.Loan, error) {
	loan, err := s.accountRepo.GetLoan(ctx, accountID, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}
