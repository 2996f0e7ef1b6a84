package handlers

import (
	"errors"
	"strconv"
	"time"

	"wiseman-bank/internal/core/services"
	"wiseman-bank/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints. Every dashboard load
// rolls the relevant accounts forward first, so the figures always
// reflect the current calendar month.
type DashboardHandler struct {
	rolloverService *services.RolloverService
	summaryService  *services.SummaryService
	bankService     *services.BankService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	rolloverService *services.RolloverService,
	summaryService *services.SummaryService,
	bankService *services.BankService,
) *DashboardHandler {
	return &DashboardHandler{
		rolloverService: rolloverService,
		summaryService:  summaryService,
		bankService:     bankService,
	}
}

// GetMyDashboard returns the customer dashboard
// @Summary Customer Dashboard
// @Description Roll the account forward and return its loan summary
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) GetMyDashboard(c *fiber.Ctx) error {
	accountID, ok := c.Locals("accountID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	account, err := h.rolloverService.RollForward(c.Context(), accountID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountNotFound):
			return response.NotFound(c, "Account not found")
		case errors.Is(err, services.ErrRolloverConflict):
			// Another session just rolled the account, re-read it
			account, err = h.rolloverService.RollForward(c.Context(), accountID)
			if err != nil {
				return response.InternalServerError(c, "Failed to load dashboard")
			}
		case errors.Is(err, services.ErrClockSkew):
			return response.Conflict(c, "Account schedule is ahead of the server clock")
		default:
			return response.InternalServerError(c, "Failed to load dashboard")
		}
	}

	summary := h.summaryService.CustomerSummary(account)

	return response.Success(c, "Dashboard retrieved successfully", fiber.Map{
		"summary": summary,
		"loans":   account.Loans,
	})
}

// GetAdminDashboard returns the admin dashboard
// @Summary Admin Dashboard
// @Description Roll all accounts forward and return portfolio totals (Admin only)
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year for YTD figures (defaults to current year)"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/admin [get]
func (h *DashboardHandler) GetAdminDashboard(c *fiber.Ctx) error {
	year, err := strconv.Atoi(c.Query("year", strconv.Itoa(time.Now().Year())))
	if err != nil || year < 1 {
		return response.BadRequest(c, "Invalid year")
	}

	accounts, err := h.rolloverService.RollForwardAll(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load admin dashboard")
	}

	summary := h.summaryService.AdminSummary(accounts, year)
	rows := h.summaryService.ActiveLoanRows(accounts)

	settings, err := h.bankService.GetSettings(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load bank settings")
	}

	return response.Success(c, "Admin dashboard retrieved successfully", fiber.Map{
		"summary":      summary,
		"active_loans": rows,
		"bank_balance": settings.Balance,
		"year":         year,
	})
}
