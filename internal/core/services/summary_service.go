package services

import (
	"wiseman-bank/internal/adapters/persistence/models"
	"wiseman-bank/internal/pkg/monthkey"
)

// SummaryService computes dashboard projections over already-loaded
// accounts. Pure reads: nothing here mutates a loan.
type SummaryService struct{}

// NewSummaryService creates a new summary service
func NewSummaryService() *SummaryService {
	return &SummaryService{}
}

// AdminSummary represents the admin dashboard totals
type AdminSummary struct {
	PaidOff        float64 `json:"paid_off"`
	Outstanding    float64 `json:"outstanding"`
	MonthlyDeposit float64 `json:"monthly_deposit"`
	YTDInterest    float64 `json:"ytd_interest"`
	YTDPrincipal   float64 `json:"ytd_principal"`
}

// CustomerSummary represents one customer's dashboard totals
type CustomerSummary struct {
	PaymentDue     float64 `json:"payment_due"`
	TotalLoan      float64 `json:"total_loan"`
	CurrentBalance float64 `json:"current_balance"`
	MonthsLeft     int     `json:"months_left"`
}

// ActiveLoanRow represents one row of the admin active-loans table
type ActiveLoanRow struct {
	User      string  `json:"user"`
	AccountID string  `json:"account_id"`
	LoanID    string  `json:"loan_id"`
	Principal float64 `json:"principal"`
	PaidOff   float64 `json:"paid_off"`
	Balance   float64 `json:"balance"`
}

// AdminSummary aggregates across every account's loans. PaidOff,
// Outstanding and MonthlyDeposit cover Progress loans only; the YTD
// figures cover all loans regardless of status, restricted to payment
// entries posted in the selected calendar year.
func (s *SummaryService) AdminSummary(accounts []*models.Account, year int) *AdminSummary {
	summary := &AdminSummary{}

	for _, account := range accounts {
		for i := range account.Loans {
			loan := &account.Loans[i]

			if loan.Status == models.LoanStatusProgress {
				summary.PaidOff += loan.PaidOff()
				summary.Outstanding += loan.CurrBalance
				summary.MonthlyDeposit += loan.CurrEMI
			}

			for j, date := range loan.PaymentDates {
				entryYear, err := monthkey.YearOf(date)
				if err != nil || entryYear != year {
					continue
				}
				if j < len(loan.PaymentInterests) {
					summary.YTDInterest += loan.PaymentInterests[j]
				}
				if j < len(loan.PaymentAmounts) {
					summary.YTDPrincipal += loan.PaymentAmounts[j]
				}
			}
		}
	}

	// YTD principal is what remains of the year's payments after the
	// interest portions.
	summary.YTDPrincipal -= summary.YTDInterest
	return summary
}

// CustomerSummary aggregates one account's Progress loans. MonthsLeft
// is the maximum remaining duration, not a sum.
func (s *SummaryService) CustomerSummary(account *models.Account) *CustomerSummary {
	summary := &CustomerSummary{}

	for i := range account.Loans {
		loan := &account.Loans[i]
		if loan.Status != models.LoanStatusProgress {
			continue
		}

		summary.PaymentDue += loan.CurrEMI
		summary.TotalLoan += loan.Principal
		summary.CurrentBalance += loan.CurrBalance
		if loan.CurrDuration > summary.MonthsLeft {
			summary.MonthsLeft = loan.CurrDuration
		}
	}

	return summary
}

// ActiveLoanRows builds the admin table of Progress loans across all
// accounts
func (s *SummaryService) ActiveLoanRows(accounts []*models.Account) []ActiveLoanRow {
	rows := make([]ActiveLoanRow, 0)

	for _, account := range accounts {
		for i := range account.Loans {
			loan := &account.Loans[i]
			if loan.Status != models.LoanStatusProgress {
				continue
			}
			rows = append(rows, ActiveLoanRow{
				User:      account.FirstName,
				AccountID: account.ID,
				LoanID:    loan.LoanID,
				Principal: loan.Principal,
				PaidOff:   loan.PaidOff(),
				Balance:   loan.CurrBalance,
			})
		}
	}

	return rows
}
