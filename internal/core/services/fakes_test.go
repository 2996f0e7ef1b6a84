package services

import (
	"context"
	"sync"

	"wiseman-bank/internal/adapters/persistence/models"
	"wiseman-bank/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// fakeAccountRepo is an in-memory AccountRepository. Reads hand out
// deep copies so in-flight mutations stay invisible until commit,
// matching how the real store behaves.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*models.Account

	// failNextCommit makes the next CommitRollover report a
	// watermark conflict without touching the store
	failNextCommit bool
	commitCalls    int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*models.Account)}
}

func (f *fakeAccountRepo) put(account *models.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[account.ID] = cloneAccount(account)
}

func (f *fakeAccountRepo) Create(ctx context.Context, account *models.Account) error {
	f.put(account)
	return nil
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneAccount(account), nil
}

func (f *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Email == email {
			return cloneAccount(account), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAccountRepo) Update(ctx context.Context, account *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.accounts[account.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	loans := stored.Loans
	f.accounts[account.ID] = cloneAccount(account)
	f.accounts[account.ID].Loans = loans
	return nil
}

func (f *fakeAccountRepo) List(ctx context.Context, offset, limit int) ([]*models.Account, int64, error) {
	accounts, err := f.ListByRole(ctx, "USER")
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(accounts))
	if offset >= len(accounts) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(accounts) {
		end = len(accounts)
	}
	return accounts[offset:end], total, nil
}

func (f *fakeAccountRepo) ListByRole(ctx context.Context, role string) ([]*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	accounts := make([]*models.Account, 0, len(f.accounts))
	for _, account := range f.accounts {
		if account.Role == role {
			accounts = append(accounts, cloneAccount(account))
		}
	}
	return accounts, nil
}

func (f *fakeAccountRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccountRepo) CommitRollover(ctx context.Context, accountID, expectedWatermark, newWatermark string, loans []models.Loan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commitCalls++

	if f.failNextCommit {
		f.failNextCommit = false
		return repositories.ErrWatermarkConflict
	}

	stored, ok := f.accounts[accountID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.LastUpdate != expectedWatermark {
		return repositories.ErrWatermarkConflict
	}

	stored.LastUpdate = newWatermark
	stored.Loans = cloneLoans(loans)
	return nil
}

func (f *fakeAccountRepo) AddLoan(ctx context.Context, loan *models.Loan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[loan.AccountID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	account.Loans = append(account.Loans, *cloneLoan(loan))
	return nil
}

func (f *fakeAccountRepo) GetLoan(ctx context.Context, accountID, loanID string) (*models.Loan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[accountID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for i := range account.Loans {
		if account.Loans[i].LoanID == loanID {
			return cloneLoan(&account.Loans[i]), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAccountRepo) UpdateLoan(ctx context.Context, loan *models.Loan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[loan.AccountID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range account.Loans {
		if account.Loans[i].LoanID == loan.LoanID {
			account.Loans[i] = *cloneLoan(loan)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func cloneAccount(account *models.Account) *models.Account {
	copied := *account
	copied.Loans = cloneLoans(account.Loans)
	return &copied
}

func cloneLoans(loans []models.Loan) []models.Loan {
	copied := make([]models.Loan, len(loans))
	for i := range loans {
		copied[i] = *cloneLoan(&loans[i])
	}
	return copied
}

func cloneLoan(loan *models.Loan) *models.Loan {
	copied := *loan
	copied.PaymentAmounts = append([]float64(nil), loan.PaymentAmounts...)
	copied.PaymentDates = append([]string(nil), loan.PaymentDates...)
	copied.PaymentInterests = append([]float64(nil), loan.PaymentInterests...)
	copied.PaymentStatuses = append([]string(nil), loan.PaymentStatuses...)
	return &copied
}

// fakeBankRepo is an in-memory BankRepository
type fakeBankRepo struct {
	mu       sync.Mutex
	settings models.BankSettings
}

func newFakeBankRepo(balance float64, referralCode string) *fakeBankRepo {
	return &fakeBankRepo{settings: models.BankSettings{ID: 1, Balance: balance, ReferralCode: referralCode}}
}

func (f *fakeBankRepo) Get(ctx context.Context) (*models.BankSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	settings := f.settings
	return &settings, nil
}

func (f *fakeBankRepo) UpdateBalance(ctx context.Context, balance float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings.Balance = balance
	return nil
}

func (f *fakeBankRepo) Credit(ctx context.Context, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings.Balance += amount
	return nil
}

func (f *fakeBankRepo) UpdateReferralCode(ctx context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings.ReferralCode = code
	return nil
}
