package services

import (
	"context"
	"errors"
	"log"

	"wiseman-bank/internal/adapters/persistence/models"
	"wiseman-bank/internal/adapters/persistence/repositories"
	"wiseman-bank/internal/core/domain"
	"wiseman-bank/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User management errors
var (
	ErrUserHasActiveLoans = errors.New("user still has active loans")
	ErrInvalidLoanAction  = errors.New("loan action must be foreclose or lose")
)

// Loan actions applied when an account with active loans is removed
const (
	LoanActionForeclose = "foreclose"
	LoanActionLose      = "lose"
)

// UserService handles admin-side account management
type UserService struct {
	accountRepo repositories.AccountRepository
	bankRepo    repositories.BankRepository
}

// NewUserService creates a new user service
func NewUserService(accountRepo repositories.AccountRepository, bankRepo repositories.BankRepository) *UserService {
	return &UserService{
		accountRepo: accountRepo,
		bankRepo:    bankRepo,
	}
}

// AddUserInput represents admin user creation input
type AddUserInput struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

// UserListItem is one row of the admin user list
type UserListItem struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Status      string `json:"status"`
	LastUpdate  string `json:"last_update"`
	ActiveLoans int    `json:"active_loans"`
}

// AddUser creates a customer account on the admin's behalf. The
// referral gate does not apply here.
func (s *UserService) AddUser(ctx context.Context, input *AddUserInput) (*models.Account, error) {
	if !password.ValidatePolicy(input.Password) {
		return nil, ErrWeakPassword
	}

	exists, err := s.accountRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:        uuid.New().String(),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  hashedPassword,
		Role:      domain.RoleUser.String(),
		Status:    models.AccountStatusActive,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	log.Printf("✅ User created by admin: %s", account.Email)
	return account, nil
}

// RemoveUser marks an account deleted. Active loans are settled by
// loanAction: foreclose closes each loan and extends its foreclosure
// count, lose writes each loan off. An empty loanAction is rejected
// when active loans remain.
func (s *UserService) RemoveUser(ctx context.Context, accountID, loanAction string) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	if account.ActiveLoanCount() > 0 {
		switch loanAction {
		case LoanActionForeclose:
			for i := range account.Loans {
				loan := &account.Loans[i]
				if !loan.IsActive() {
					continue
				}
				loan.Status = models.LoanStatusClosedFC
				loan.ForeclosureMonths++
				loan.CurrBalance = 0
				loan.CurrDuration = 0
				if err := s.accountRepo.UpdateLoan(ctx, loan); err != nil {
					return err
				}
			}
		case LoanActionLose:
			for i := range account.Loans {
				loan := &account.Loans[i]
				if !loan.IsActive() {
					continue
				}
				loan.Status = models.LoanStatusLost
				if err := s.accountRepo.UpdateLoan(ctx, loan); err != nil {
					return err
				}
			}
		default:
			return ErrInvalidLoanAction
		}
	}

	account.Status = models.AccountStatusDeleted
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return err
	}

	log.Printf("✅ User removed: %s (loans: %s)", account.Email, loanAction)
	return nil
}

// ListUsers returns a page of customer accounts with their active
// loan counts
func (s *UserService) ListUsers(ctx context.Context, offset, limit int) ([]*UserListItem, int64, error) {
	accounts, total, err := s.accountRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*UserListItem, 0, len(accounts))
	for _, account := range accounts {
		items = append(items, &UserListItem{
			ID:          account.ID,
			FirstName:   account.FirstName,
			LastName:    account.LastName,
			Email:       account.Email,
			Status:      account.Status,
			LastUpdate:  account.LastUpdate,
			ActiveLoans: account.ActiveLoanCount(),
		})
	}
	return items, total, nil
}

// GetUser returns one account with its loans
func (s *UserService) GetUser(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}
