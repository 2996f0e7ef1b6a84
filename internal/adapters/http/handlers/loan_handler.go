package handlers

import (
	"errors"
	"strconv"

	"wiseman-bank/internal/core/services"
	"wiseman-bank/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles customer-facing loan endpoints
type LoanHandler struct {
	loanService     *services.LoanService
	rolloverService *services.RolloverService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService, rolloverService *services.RolloverService) *LoanHandler {
	return &LoanHandler{
		loanService:     loanService,
		rolloverService: rolloverService,
	}
}

// GetMyLoans returns the current account's loans with full payment history
// @Summary My Loans
// @Description Roll the account forward and return its loans
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /loans [get]
func (h *LoanHandler) GetMyLoans(c *fiber.Ctx) error {
	accountID, ok := c.Locals("accountID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	account, err := h.rolloverService.RollForward(c.Context(), accountID)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			return response.NotFound(c, "Account not found")
		}
		return response.InternalServerError(c, "Failed to load loans")
	}

	return response.Success(c, "Loans retrieved successfully", fiber.Map{
		"loans": account.Loans,
	})
}

// GetPayoffQuote returns an early-settlement quote for one loan
// @Summary Payoff Quote
// @Description Quote early settlement of a loan on a given day of the month
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param loanId path string true "Loan ID"
// @Param day query int true "Day of the month (1-31)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{loanId}/payoff [get]
func (h *LoanHandler) GetPayoffQuote(c *fiber.Ctx) error {
	accountID, ok := c.Locals("accountID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	loanID := c.Params("loanId")
	day, err := strconv.Atoi(c.Query("day", "1"))
	if err != nil {
		return response.BadRequest(c, "Invalid day")
	}

	quote, err := h.loanService.Payoff(c.Context(), accountID, loanID, day)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPayoffDay):
			return response.BadRequest(c, "Day must be between 1 and 31")
		case errors.Is(err, services.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, services.ErrLoanNotActive):
			return response.BadRequest(c, "Loan is not active")
		default:
			return response.InternalServerError(c, "Failed to quote payoff")
		}
	}

	return response.Success(c, "Payoff quote retrieved successfully", quote)
}
