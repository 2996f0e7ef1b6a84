package services

import (
	"context"
	"errors"
	"testing"

	"wiseman-bank/internal/adapters/persistence/models"
)

func TestRemoveUserForecloses(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.put(&models.Account{
		ID:     "acc-1",
		Email:  "a@example.com",
		Role:   "USER",
		Status: models.AccountStatusActive,
		Loans: []models.Loan{
			progressLoan("acc-1", "AB12CD34", 1200, 12, 110, 12),
		},
	})
	svc := NewUserService(repo, newFakeBankRepo(0, "BANK123"))

	if err := svc.RemoveUser(context.Background(), "acc-1", LoanActionForeclose); err != nil {
		t.Fatalf("RemoveUser: %v", err)
	}

	account, _ := repo.GetByID(context.Background(), "acc-1")
	if account.Status != models.AccountStatusDeleted {
		t.Errorf("account status = %q, want Deleted", account.Status)
	}
	loan := account.Loans[0]
	if loan.Status != models.LoanStatusClosedFC {
		t.Errorf("loan status = %q, want Closed-FC", loan.Status)
	}
	if loan.ForeclosureMonths != 1 {
		t.Errorf("ForeclosureMonths = %d, want 1", loan.ForeclosureMonths)
	}
	if loan.CurrBalance != 0 || loan.CurrDuration != 0 {
		t.Errorf("foreclosed loan keeps balance %v / duration %d", loan.CurrBalance, loan.CurrDuration)
	}
}

func TestRemoveUserWritesOff(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.put(&models.Account{
		ID:     "acc-1",
		Role:   "USER",
		Status: models.AccountStatusActive,
		Loans: []models.Loan{
			progressLoan("acc-1", "AB12CD34", 1200, 12, 110, 12),
		},
	})
	svc := NewUserService(repo, newFakeBankRepo(0, "BANK123"))

	if err := svc.RemoveUser(context.Background(), "acc-1", LoanActionLose); err != nil {
		t.Fatalf("RemoveUser: %v", err)
	}

	account, _ := repo.GetByID(context.Background(), "acc-1")
	if account.Loans[0].Status != models.LoanStatusLost {
		t.Errorf("loan status = %q, want Lost", account.Loans[0].Status)
	}
}

func TestRemoveUserRequiresLoanAction(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.put(&models.Account{
		ID:     "acc-1",
		Role:   "USER",
		Status: models.AccountStatusActive,
		Loans: []models.Loan{
			progressLoan("acc-1", "AB12CD34", 1200, 12, 110, 12),
		},
	})
	svc := NewUserService(repo, newFakeBankRepo(0, "BANK123"))

	if err := svc.RemoveUser(context.Background(), "acc-1", ""); !errors.Is(err, ErrInvalidLoanAction) {
		t.Fatalf("err = %v, want ErrInvalidLoanAction", err)
	}

	// Account must be untouched after the rejection
	account, _ := repo.GetByID(context.Background(), "acc-1")
	if account.Status != models.AccountStatusActive {
		t.Errorf("account status = %q, want Active", account.Status)
	}
}

func TestRemoveUserWithoutActiveLoans(t *testing.T) {
	repo := newFakeAccountRepo()
	closed := progressLoan("acc-1", "AB12CD34", 0, 12, 110, 0)
	closed.Status = models.LoanStatusClosed
	repo.put(&models.Account{
		ID:     "acc-1",
		Role:   "USER",
		Status: models.AccountStatusActive,
		Loans:  []models.Loan{closed},
	})
	svc := NewUserService(repo, newFakeBankRepo(0, "BANK123"))

	// No loan action needed when nothing is active
	if err := svc.RemoveUser(context.Background(), "acc-1", ""); err != nil {
		t.Fatalf("RemoveUser: %v", err)
	}

	account, _ := repo.GetByID(context.Background(), "acc-1")
	if account.Status != models.AccountStatusDeleted {
		t.Errorf("account status = %q, want Deleted", account.Status)
	}
	if account.Loans[0].Status != models.LoanStatusClosed {
		t.Errorf("closed loan status changed to %q", account.Loans[0].Status)
	}
}

func TestAddUserValidation(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.put(&models.Account{ID: "acc-1", Email: "taken@example.com", Role: "USER"})
	svc := NewUserService(repo, newFakeBankRepo(0, "BANK123"))

	_, err := svc.AddUser(context.Background(), &AddUserInput{
		FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Password: "weak",
	})
	if !errors.Is(err, ErrWeakPassword) {
		t.Errorf("err = %v, want ErrWeakPassword", err)
	}

	_, err = svc.AddUser(context.Background(), &AddUserInput{
		FirstName: "Ann", LastName: "Lee", Email: "taken@example.com", Password: "Str0ng@Pass",
	})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Errorf("err = %v, want ErrEmailAlreadyExists", err)
	}

	account, err := svc.AddUser(context.Background(), &AddUserInput{
		FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Password: "Str0ng@Pass",
	})
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if account.Role != "USER" {
		t.Errorf("role = %q, want USER", account.Role)
	}
}
