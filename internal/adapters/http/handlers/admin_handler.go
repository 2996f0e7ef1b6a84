package handlers

import (
	"errors"
	"strconv"
	"strings"

	"wiseman-bank/internal/core/services"
	"wiseman-bank/internal/pkg/pagination"
	"wiseman-bank/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles admin-only account, loan and bank endpoints
type AdminHandler struct {
	userService *services.UserService
	loanService *services.LoanService
	bankService *services.BankService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	userService *services.UserService,
	loanService *services.LoanService,
	bankService *services.BankService,
) *AdminHandler {
	return &AdminHandler{
		userService: userService,
		loanService: loanService,
		bankService: bankService,
	}
}

// AddUserRequest represents admin user creation request body
type AddUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// AddLoanRequest represents loan issuance request body
type AddLoanRequest struct {
	Principal      float64 `json:"principal"`
	InterestRate   float64 `json:"interest_rate"`
	DurationMonths int     `json:"duration_months"`
	StartDate      string  `json:"start_date"`
}

// ExtendLoanRequest represents loan extension request body
type ExtendLoanRequest struct {
	ExtraMonths int `json:"extra_months"`
}

// UpdateBankRequest represents bank settings update request body
type UpdateBankRequest struct {
	Balance      *float64 `json:"balance"`
	ReferralCode *string  `json:"referral_code"`
}

// ListUsers returns a page of customer accounts
// @Summary List users
// @Description List customer accounts with active loan counts (Admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	users, total, err := h.userService.ListUsers(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", fiber.Map{
		"users":      users,
		"pagination": pagination.GetMeta(params, total),
	})
}

// GetUser returns one account with its loans
// @Summary Get user
// @Description Get one customer account with loans (Admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param accountId path string true "Account ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{accountId} [get]
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	account, err := h.userService.GetUser(c.Context(), c.Params("accountId"))
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			return response.NotFound(c, "Account not found")
		}
		return response.InternalServerError(c, "Failed to get user")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"account": account.ToResponse(),
		"loans":   account.Loans,
	})
}

// AddUser creates a customer account
// @Summary Add user
// @Description Create a customer account without the referral gate (Admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AddUserRequest true "User data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/users [post]
func (h *AdminHandler) AddUser(c *fiber.Ctx) error {
	var req AddUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "First name, last name, email and password are required")
	}

	account, err := h.userService.AddUser(c.Context(), &services.AddUserInput{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWeakPassword):
			return response.UnprocessableEntity(c, "Password must be at least 8 characters with upper, lower, digit and special characters")
		case errors.Is(err, services.ErrEmailAlreadyExists):
			return response.Conflict(c, "Email already registered")
		default:
			return response.InternalServerError(c, "Failed to add user")
		}
	}

	return response.Created(c, "User created successfully", fiber.Map{
		"account": account.ToResponse(),
	})
}

// RemoveUser removes a customer account
// @Summary Remove user
// @Description Remove an account, settling active loans by loan_action (Admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param accountId path string true "Account ID"
// @Param loan_action query string false "foreclose or lose (required when active loans remain)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{accountId} [delete]
func (h *AdminHandler) RemoveUser(c *fiber.Ctx) error {
	accountID := c.Params("accountId")
	loanAction := c.Query("loan_action")

	if err := h.userService.RemoveUser(c.Context(), accountID, loanAction); err != nil {
		switch {
		case errors.Is(err, services.ErrAccountNotFound):
			return response.NotFound(c, "Account not found")
		case errors.Is(err, services.ErrInvalidLoanAction):
			return response.BadRequest(c, "loan_action must be foreclose or lose when active loans remain")
		default:
			return response.InternalServerError(c, "Failed to remove user")
		}
	}

	return response.Success(c, "User removed successfully", nil)
}

// AddLoan issues a loan to an account
// @Summary Add loan
// @Description Issue a new loan to a customer account (Admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param accountId path string true "Account ID"
// @Param body body AddLoanRequest true "Loan terms"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{accountId}/loans [post]
func (h *AdminHandler) AddLoan(c *fiber.Ctx) error {
	var req AddLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	loan, err := h.loanService.AddLoan(c.Context(), &services.AddLoanInput{
		AccountID:      c.Params("accountId"),
		Principal:      req.Principal,
		InterestRate:   req.InterestRate,
		DurationMonths: req.DurationMonths,
		StartDate:      req.StartDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidLoanInput):
			return response.BadRequest(c, "Principal, interest rate and duration must be positive")
		case errors.Is(err, services.ErrAccountNotFound):
			return response.NotFound(c, "Account not found")
		default:
			return response.InternalServerError(c, "Failed to add loan")
		}
	}

	return response.Created(c, "Loan issued successfully", fiber.Map{
		"loan": loan,
	})
}

// ExtendLoan stretches a loan's remaining schedule
// @Summary Extend loan
// @Description Extend a loan's remaining duration (Admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param accountId path string true "Account ID"
// @Param loanId path string true "Loan ID"
// @Param body body ExtendLoanRequest true "Extension"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{accountId}/loans/{loanId}/extend [post]
func (h *AdminHandler) ExtendLoan(c *fiber.Ctx) error {
	var req ExtendLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	loan, err := h.loanService.ExtendLoan(c.Context(), c.Params("accountId"), c.Params("loanId"), req.ExtraMonths)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidLoanInput):
			return response.BadRequest(c, "Extra months must be positive")
		case errors.Is(err, services.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, services.ErrLoanNotActive):
			return response.BadRequest(c, "Loan is not active")
		default:
			return response.InternalServerError(c, "Failed to extend loan")
		}
	}

	return response.Success(c, "Loan extended successfully", fiber.Map{
		"loan": loan,
	})
}

// ApprovePayment approves one pending installment
// @Summary Approve payment
// @Description Mark a pending installment as paid and credit the bank (Admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param accountId path string true "Account ID"
// @Param loanId path string true "Loan ID"
// @Param index path int true "Payment entry index"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{accountId}/loans/{loanId}/payments/{index}/approve [post]
func (h *AdminHandler) ApprovePayment(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return response.BadRequest(c, "Invalid payment index")
	}

	loan, err := h.loanService.ApprovePayment(c.Context(), c.Params("accountId"), c.Params("loanId"), index)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, services.ErrInvalidPaymentIndex):
			return response.BadRequest(c, "Payment index out of range")
		case errors.Is(err, services.ErrPaymentNotPending):
			return response.Conflict(c, "Payment is not pending")
		default:
			return response.InternalServerError(c, "Failed to approve payment")
		}
	}

	return response.Success(c, "Payment approved successfully", fiber.Map{
		"loan": loan,
	})
}

// GetBankSettings returns the bank balance and referral code
// @Summary Bank settings
// @Description Get the bank balance and referral code (Admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/bank [get]
func (h *AdminHandler) GetBankSettings(c *fiber.Ctx) error {
	settings, err := h.bankService.GetSettings(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to get bank settings")
	}

	return response.Success(c, "Bank settings retrieved successfully", settings)
}

// UpdateBankSettings updates the bank balance and/or referral code
// @Summary Update bank settings
// @Description Update the bank balance and/or referral code (Admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateBankRequest true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/bank [patch]
func (h *AdminHandler) UpdateBankSettings(c *fiber.Ctx) error {
	var req UpdateBankRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Balance == nil && req.ReferralCode == nil {
		return response.BadRequest(c, "Nothing to update")
	}

	if req.Balance != nil {
		if err := h.bankService.UpdateBalance(c.Context(), *req.Balance); err != nil {
			if errors.Is(err, services.ErrNegativeBalance) {
				return response.BadRequest(c, "Balance cannot be negative")
			}
			return response.InternalServerError(c, "Failed to update balance")
		}
	}

	if req.ReferralCode != nil {
		if err := h.bankService.UpdateReferralCode(c.Context(), strings.TrimSpace(*req.ReferralCode)); err != nil {
			if errors.Is(err, services.ErrEmptyReferral) {
				return response.BadRequest(c, "Referral code cannot be empty")
			}
			return response.InternalServerError(c, "Failed to update referral code")
		}
	}

	settings, err := h.bankService.GetSettings(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to get bank settings")
	}

	return response.Success(c, "Bank settings updated successfully", settings)
}
