package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/tenant_ledger/internal/core/ports/services"
	"github.com/SscSPs/tenant_ledger/internal/dto"
	"github.com/SscSPs/tenant_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	rg.POST("/coa/seed", h.seedDefaultTemplate)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:id", h.getAccount)
		accounts.PATCH("/:id", h.renameAccount)
		accounts.POST("/:id/deactivate", h.deactivateAccount)
	}
}

// seedDefaultTemplate creates any missing system accounts for the tenant.
// @Summary Seed the default chart of accounts
// @Description Creates any system accounts the tenant is missing. Existing accounts are left untouched.
// @Tags accounts
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   X-Actor-ID header string false "Acting user, defaults to system"
// @Success 201 {object} dto.SeedResponse "Accounts were created"
// @Success 200 {object} dto.SeedResponse "Chart already complete"
// @Failure 500 {object} dto.ErrorResponse
// @Router /tenants/{tenant_id}/coa/seed [post]
func (h *accountHandler) seedDefaultTemplate(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID := c.Param("tenant_id")
	actor := middleware.GetActorFromContext(c)

	created, err := h.accountService.SeedDefaultTemplate(c.Request.Context(), tenantID, actor)
	if err != nil {
		respondError(c, err, "Failed to seed chart of accounts")
		return
	}

	logger.Info("Chart of accounts seeded", slog.Int("created", len(created)))
	status := http.StatusOK
	if len(created) > 0 {
		status = http.StatusCreated
	}
	c.JSON(status, dto.SeedResponse{Created: dto.ToListAccountResponse(created)})
}

// @Summary Create a new account
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   X-Actor-ID header string false "Acting user, defaults to system"
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input or parent"
// @Failure 409 {object} dto.ErrorResponse "Account code already exists"
// @Failure 500 {object} dto.ErrorResponse
// @Router /tenants/{tenant_id}/accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	actor := middleware.GetActorFromContext(c)
	logger = logger.With(slog.String("actor_id", actor))
	logger.Info("Received request to create account", slog.String("code", req.Code), slog.String("account_type", string(req.AccountType)))

	newAccount, err := h.accountService.CreateAccount(c.Request.Context(), c.Param("tenant_id"), req, actor)
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", newAccount.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(newAccount))
}

// @Summary Get an account by ID
// @Tags accounts
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse
// @Router /tenants/{tenant_id}/accounts/{id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	account, err := h.accountService.GetAccountByID(c.Request.Context(), c.Param("tenant_id"), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts returns the tenant's chart as a depth-first tree.
// @Summary List the chart of accounts
// @Tags accounts
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tenants/{tenant_id}/accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	nodes, err := h.accountService.GetAccountTree(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		respondError(c, err, "Failed to list accounts")
		return
	}

	logger.Info("Accounts listed successfully", slog.Int("count", len(nodes)))
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToAccountTreeResponse(nodes)})
}

// @Summary Rename an account
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   X-Actor-ID header string false "Acting user, defaults to system"
// @Param   id path string true "Account ID"
// @Param   account body dto.RenameAccountRequest true "New name"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 409 {object} dto.ErrorResponse "System accounts cannot be renamed"
// @Router /tenants/{tenant_id}/accounts/{id} [patch]
func (h *accountHandler) renameAccount(c *gin.Context) {
	var req dto.RenameAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.accountService.RenameAccount(c.Request.Context(), c.Param("tenant_id"), c.Param("id"), req.Name, middleware.GetActorFromContext(c))
	if err != nil {
		respondError(c, err, "Failed to rename account")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Account renamed", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// @Summary Deactivate an account
// @Tags accounts
// @Param   tenant_id path string true "Tenant ID"
// @Param   X-Actor-ID header string false "Acting user, defaults to system"
// @Param   id path string true "Account ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 409 {object} dto.ErrorResponse "System accounts cannot be deactivated"
// @Router /tenants/{tenant_id}/accounts/{id}/deactivate [post]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	accountID := c.Param("id")
	if err := h.accountService.DeactivateAccount(c.Request.Context(), c.Param("tenant_id"), accountID, middleware.GetActorFromContext(c)); err != nil {
		respondError(c, err, "Failed to deactivate account")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Account deactivated", slog.String("account_id", accountID))
	c.Status(http.StatusNoContent)
}
