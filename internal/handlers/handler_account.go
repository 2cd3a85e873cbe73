package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	portssvc "github.com/sunubank/bankapi/internal/core/ports/services"
	"github.com/sunubank/bankapi/internal/dto"
	"github.com/sunubank/bankapi/internal/middleware"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// RegisterAccountRoutes registers routes related to accounts.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := &accountHandler{accountService: accountService}

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", middleware.RequireAdmin(), h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:id", h.getAccount)
		accounts.PATCH("/:id", h.updateAccount)
		accounts.POST("/:id/block", middleware.RequireAdmin(), h.blockAccount)
		accounts.DELETE("/:id", h.closeAccount)
	}
}

// createAccount godoc
// @Summary Open a new bank account
// @Description Opens an account for a client, creating the client record and its login user when they do not exist yet
// @Tags accounts
// @Accept json
// @Produce json
// @Param account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input or opening balance below the minimum"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 409 {object} dto.ErrorResponse "Client contact already registered"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind account creation request", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	result, err := h.accountService.CreateAccount(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "ACCOUNT")
		return
	}

	c.JSON(http.StatusCreated, dto.ToAccountResponse(&result.Account, result.Holder, time.Now()))
}

// listAccounts godoc
// @Summary List accounts
// @Description Lists accounts visible to the caller with filtering, search and pagination. Status is derived at read time.
// @Tags accounts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param type query string false "Account type" Enums(checking, savings, business)
// @Param status query string false "Derived status" Enums(active, blocked, archived)
// @Param search query string false "Match against number, holder name or email"
// @Param sort query string false "Sort key" Enums(openedAt, balance, holder)
// @Param order query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} dto.ListAccountsResponse
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := h.accountService.ListAccounts(c.Request.Context(), caller, params)
	if err != nil {
		respondError(c, err, "ACCOUNT")
		return
	}

	now := time.Now()
	resp := dto.ListAccountsResponse{
		Accounts:   make([]dto.AccountResponse, len(page.Accounts)),
		Pagination: dto.NewPagination(params.Page, params.Limit, page.Total),
	}
	for i := range page.Accounts {
		resp.Accounts[i] = dto.ToAccountResponse(&page.Accounts[i].Account, page.Accounts[i].Holder, now)
	}
	c.JSON(http.StatusOK, resp)
}

// getAccount godoc
// @Summary Get an account by ID
// @Description Retrieves one account. Clients only see their own accounts; other IDs report not found.
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	result, err := h.accountService.GetAccount(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, err, "ACCOUNT")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(&result.Account, result.Holder, time.Now()))
}

// updateAccount godoc
// @Summary Update holder details
// @Description Applies a partial update of the holder's name or contact details
// @Tags accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param update body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse "No fields provided or invalid values"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{id} [patch]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind account update request", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	result, err := h.accountService.UpdateAccount(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		respondError(c, err, "ACCOUNT")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(&result.Account, result.Holder, time.Now()))
}

// blockAccount godoc
// @Summary Block an account
// @Description Places a blocking interval with a reason on an active account. A missing end date blocks indefinitely.
// @Tags accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param block body dto.BlockAccountRequest true "Blocking interval"
// @Success 200 {object} dto.AccountResponse
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 409 {object} dto.ErrorResponse "Account already blocked or archived"
// @Failure 422 {object} dto.ErrorResponse "Invalid blocking interval"
// @Security BearerAuth
// @Router /accounts/{id}/block [post]
func (h *accountHandler) blockAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var req dto.BlockAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind block request", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	result, err := h.accountService.BlockAccount(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		respondError(c, err, "ACCOUNT")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(&result.Account, result.Holder, time.Now()))
}

// closeAccount godoc
// @Summary Close an account
// @Description Archives the account and every one of its transactions. Archival is terminal; nothing is deleted.
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 409 {object} dto.ErrorResponse "Account already archived"
// @Security BearerAuth
// @Router /accounts/{id} [delete]
func (h *accountHandler) closeAccount(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	result, err := h.accountService.CloseAccount(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, err, "ACCOUNT")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(&result.Account, result.Holder, time.Now()))
}
