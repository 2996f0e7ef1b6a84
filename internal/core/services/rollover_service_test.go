package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"wiseman-bank/internal/adapters/persistence/models"
)

func clockAt(month, year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.Month(month), 15, 10, 0, 0, 0, time.UTC)
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func progressLoan(accountID, loanID string, balance, rate, emi float64, duration int) models.Loan {
	return models.Loan{
		AccountID:        accountID,
		LoanID:           loanID,
		Principal:        balance,
		InterestRate:     rate,
		DurationMonths:   duration,
		CurrBalance:      balance,
		CurrInterestRate: rate,
		CurrEMI:          emi,
		CurrDuration:     duration,
		Status:           models.LoanStatusProgress,
		PaymentAmounts:   []float64{},
		PaymentDates:     []string{},
		PaymentInterests: []float64{},
		PaymentStatuses:  []string{},
	}
}

func TestRollForwardTwoMonths(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.put(&models.Account{
		ID:         "acc-1",
		Email:      "a@example.com",
		Role:       "USER",
		Status:     models.AccountStatusActive,
		LastUpdate: "11/2024",
		Loans:      []models.Loan{progressLoan("acc-1", "AB12CD34", 1200, 12, 110, 12)},
	})

	svc := NewRolloverServiceWithClock(repo, clockAt(1, 2025))
	account, err := svc.RollForward(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("RollForward: %v", err)
	}

	if account.LastUpdate != "1/2025" {
		t.Errorf("watermark = %q, want 1/2025", account.LastUpdate)
	}

	loan := account.Loans[0]
	if len(loan.PaymentAmounts) != 2 {
		t.Fatalf("posted %d entries, want 2", len(loan.PaymentAmounts))
	}

	wantDates := []string{"12/1/2024", "1/1/2025"}
	for i, want := range wantDates {
		if loan.PaymentDates[i] != want {
			t.Errorf("date[%d] = %q, want %q", i, loan.PaymentDates[i], want)
		}
		if loan.PaymentStatuses[i] != models.PaymentStatusPending {
			t.Errorf("status[%d] = %q, want Pending", i, loan.PaymentStatuses[i])
		}
		if !almostEqual(loan.PaymentAmounts[i], 110) {
			t.Errorf("amount[%d] = %v, want 110", i, loan.PaymentAmounts[i])
		}
	}

	// Interest accrues on the balance before each payment:
	// 1200 * 1% = 12, then (1200*1.01 - 110) * 1% = 11.02.
	if !almostEqual(loan.PaymentInterests[0], 12) {
		t.Errorf("interest[0] = %v, want 12", loan.PaymentInterests[0])
	}
	if math.Abs(loan.PaymentInterests[1]-11.02) > 1e-9 {
		t.Errorf("interest[1] = %v, want 11.02", loan.PaymentInterests[1])
	}
	if math.Abs(loan.CurrBalance-1003.02) > 1e-9 {
		t.Errorf("balance = %v, want 1003.02", loan.CurrBalance)
	}
	if loan.CurrDuration != 10 {
		t.Errorf("duration = %d, want 10", loan.CurrDuration)
	}
	if loan.Status != models.LoanStatusProgress {
		t.Errorf("status = %q, want Progress", loan.Status)
	}

	// The commit must be visible to a fresh read
	stored, err := repo.GetByID(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.LastUpdate != "1/2025" || len(stored.Loans[0].PaymentAmounts) != 2 {
		t.Error("rollover was not persisted")
	}
}

func TestRollForwardClosesWhenDurationExhausted(t *testing.T) {
	repo := newFakeAccountRepo()
	loan := progressLoan("acc-1", "AB12CD34", 500, 10, 100, 1)
	repo.put(&models.Account{
		ID:         "acc-1",
		Role:       "USER",
		LastUpdate: "1/2025",
		Loans:      []models.Loan{loan},
	})

	// Three months behind, but only one month of schedule remains.
	svc := NewRolloverServiceWithClock(repo, clockAt(4, 2025))
	account, err := svc.RollForward(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("RollForward: %v", err)
	}

	got := account.Loans[0]
	if got.Status != models.LoanStatusClosed {
		t.Errorf("status = %q, want Closed", got.Status)
	}
	if len(got.PaymentAmounts) != 1 {
		t.Errorf("posted %d entries, want 1", len(got.PaymentAmounts))
	}
	if got.CurrDuration != 0 {
		t.Errorf("duration = %d, want 0", got.CurrDuration)
	}
	if account.LastUpdate != "4/2025" {
		t.Errorf("watermark = %q, want 4/2025", account.LastUpdate)
	}
}

func TestRollForwardClosesWhenBalanceDepleted(t *testing.T) {
	repo := newFakeAccountRepo()
	// One installment wipes the balance even with many months left.
	loan := progressLoan("acc-1", "AB12CD34", 50, 12, 100, 24)
	repo.put(&models.Account{
		ID:         "acc-1",
		Role:       "USER",
		LastUpdate: "1/2025",
		Loans:      []models.Loan{loan},
	})

	svc := NewRolloverServiceWithClock(repo, clockAt(5, 2025))
	account, err := svc.RollForward(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("RollForward: %v", err)
	}

	got := account.Loans[0]
	if got.Status != models.LoanStatusClosed {
		t.Errorf("status = %q, want Closed", got.Status)
	}
	if len(got.PaymentAmounts) != 1 {
		t.Errorf("posted %d entries, want 1", len(got.PaymentAmounts))
	}
	if got.CurrBalance > 0 {
		t.Errorf("balance = %v, want <= 0", got.CurrBalance)
	}
}

func TestRollForwardIsIdempotentWithinMonth(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.put(&models.Account{
		ID:         "acc-1",
		Role:       "USER",
		LastUpdate: "11/2024",
		Loans:      []models.Loan{progressLoan("acc-1", "AB12CD34", 1200, 12, 110, 12)},
	})

	svc := NewRolloverServiceWithClock(repo, clockAt(1, 2025))
	first, err := svc.RollForward(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("first RollForward: %v", err)
	}
	second, err := svc.RollForward(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("second RollForward: %v", err)
	}

	if len(second.Loans[0].PaymentAmounts) != len(first.Loans[0].PaymentAmounts) {
		t.Errorf("second call posted entries: %d vs %d",
			len(second.Loans[0].PaymentAmounts), len(first.Loans[0].PaymentAmounts))
	}
	if !almostEqual(second.Loans[0].CurrBalance, first.Loans[0].CurrBalance) {
		t.Errorf("second call changed balance: %v vs %v",
			second.Loans[0].CurrBalance, first.Loans[0].CurrBalance)
	}
	if repo.commitCalls != 1 {
		t.Errorf("commitCalls = %d, want 1", repo.commitCalls)
	}
}

func TestRollForwardBootstrapsEmptyWatermark(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.put(&models.Account{
		ID:    "acc-1",
		Role:  "USER",
		Loans: []models.Loan{progressLoan("acc-1", "AB12CD34", 1200, 12, 110, 12)},
	})

	svc := NewRolloverServiceWithClock(repo, clockAt(3, 2025))
	account, err := svc.RollForward(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("RollForward: %v", err)
	}

	if account.LastUpdate != "3/2025" {
		t.Errorf("watermark = %q, want 3/2025", account.LastUpdate)
	}
	if len(account.Loans[0].PaymentAmounts) != 0 {
		t.Errorf("bootstrap posted %d entries, want 0", len(account.Loans[0].PaymentAmounts))
	}
}

func TestRollForwardRejectsFutureWatermark(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.put(&models.Account{
		ID:         "acc-1",
		Role:       "USER",
		LastUpdate: "6/2025",
		Loans:      []models.Loan{progressLoan("acc-1", "AB12CD34", 1200, 12, 110, 12)},
	})

	svc := NewRolloverServiceWithClock(repo, clockAt(3, 2025))
	_, err := svc.RollForward(context.Background(), "acc-1")
	if !errors.Is(err, ErrClockSkew) {
		t.Fatalf("err = %v, want ErrClockSkew", err)
	}

	stored, _ := repo.GetByID(context.Background(), "acc-1")
	if stored.LastUpdate != "6/2025" || len(stored.Loans[0].PaymentAmounts) != 0 {
		t.Error("rejected rollover must not mutate the account")
	}
}

func TestRollForwardAccountNotFound(t *testing.T) {
	svc := NewRolloverServiceWithClock(newFakeAccountRepo(), clockAt(3, 2025))
	_, err := svc.RollForward(context.Background(), "missing")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestRollForwardConflictSurfaces(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.put(&models.Account{
		ID:         "acc-1",
		Role:       "USER",
		LastUpdate: "12/2024",
		Loans:      []models.Loan{progressLoan("acc-1", "AB12CD34", 1200, 12, 110, 12)},
	})
	repo.failNextCommit = true

	svc := NewRolloverServiceWithClock(repo, clockAt(1, 2025))
	_, err := svc.RollForward(context.Background(), "acc-1")
	if !errors.Is(err, ErrRolloverConflict) {
		t.Fatalf("err = %v, want ErrRolloverConflict", err)
	}
}

func TestRollForwardKeepsSequencesParallel(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.put(&models.Account{
		ID:         "acc-1",
		Role:       "USER",
		LastUpdate: "1/2023",
		Loans: []models.Loan{
			progressLoan("acc-1", "AB12CD34", 2400, 10, 100, 24),
			progressLoan("acc-1", "EF56GH78", 600, 8, 200, 3),
		},
	})

	svc := NewRolloverServiceWithClock(repo, clockAt(1, 2025))
	account, err := svc.RollForward(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("RollForward: %v", err)
	}

	for _, loan := range account.Loans {
		n := len(loan.PaymentAmounts)
		if len(loan.PaymentDates) != n || len(loan.PaymentInterests) != n || len(loan.PaymentStatuses) != n {
			t.Errorf("loan %s sequences diverged: %d/%d/%d/%d", loan.LoanID,
				n, len(loan.PaymentDates), len(loan.PaymentInterests), len(loan.PaymentStatuses))
		}
	}

	// The short loan must have exhausted its schedule and stopped.
	short := account.Loans[1]
	if short.Status != models.LoanStatusClosed {
		t.Errorf("short loan status = %q, want Closed", short.Status)
	}
	if len(short.PaymentAmounts) != 3 {
		t.Errorf("short loan posted %d entries, want 3", len(short.PaymentAmounts))
	}
}

func TestRollForwardSkipsInactiveLoans(t *testing.T) {
	repo := newFakeAccountRepo()
	closed := progressLoan("acc-1", "AB12CD34", 0, 12, 110, 0)
	closed.Status = models.LoanStatusClosed
	repo.put(&models.Account{
		ID:         "acc-1",
		Role:       "USER",
		LastUpdate: "11/2024",
		Loans:      []models.Loan{closed},
	})

	svc := NewRolloverServiceWithClock(repo, clockAt(1, 2025))
	account, err := svc.RollForward(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("RollForward: %v", err)
	}

	if len(account.Loans[0].PaymentAmounts) != 0 {
		t.Errorf("closed loan gained %d entries", len(account.Loans[0].PaymentAmounts))
	}
	if account.LastUpdate != "1/2025" {
		t.Errorf("watermark = %q, want 1/2025", account.LastUpdate)
	}
}

func TestRollForwardAll(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.put(&models.Account{
		ID:         "acc-1",
		Role:       "USER",
		LastUpdate: "12/2024",
		Loans:      []models.Loan{progressLoan("acc-1", "AB12CD34", 1200, 12, 110, 12)},
	})
	repo.put(&models.Account{
		ID:         "acc-2",
		Role:       "USER",
		LastUpdate: "1/2025",
	})
	repo.put(&models.Account{
		ID:   "admin-1",
		Role: "ADMIN",
	})

	svc := NewRolloverServiceWithClock(repo, clockAt(1, 2025))
	accounts, err := svc.RollForwardAll(context.Background())
	if err != nil {
		t.Fatalf("RollForwardAll: %v", err)
	}

	if len(accounts) != 2 {
		t.Fatalf("processed %d accounts, want 2", len(accounts))
	}
	for _, account := range accounts {
		if account.LastUpdate != "1/2025" {
			t.Errorf("account %s watermark = %q, want 1/2025", account.ID, account.LastUpdate)
		}
	}
}
