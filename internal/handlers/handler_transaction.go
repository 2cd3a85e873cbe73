package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/sunubank/bankapi/internal/core/ports/services"
	"github.com/sunubank/bankapi/internal/dto"
	"github.com/sunubank/bankapi/internal/middleware"
)

// transactionHandler handles HTTP requests related to ledger records.
type transactionHandler struct {
	txnService portssvc.TransactionSvcFacade
}

// registerTransactionRoutes registers routes related to transactions.
func registerTransactionRoutes(rg *gin.RouterGroup, txnService portssvc.TransactionSvcFacade) {
	h := &transactionHandler{txnService: txnService}

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.createTransaction)
		transactions.GET("", h.listTransactions)
		transactions.GET("/:id", h.getTransaction)
		transactions.PATCH("/:id", middleware.RequireAdmin(), h.updateTransaction)
		transactions.DELETE("/:id", middleware.RequireAdmin(), h.cancelTransaction)
	}
}

// createTransaction godoc
// @Summary Record a transaction
// @Description Records a transaction on an active account and updates the account's activity timestamp
// @Tags transactions
// @Accept json
// @Produce json
// @Param transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input or account not active"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind transaction request", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	txn, err := h.txnService.CreateTransaction(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "ACCOUNT")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// listTransactions godoc
// @Summary List transactions
// @Description Lists transactions, newest first. Clients must scope the listing to one of their accounts.
// @Tags transactions
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(15)
// @Param accountID query string false "Scope to one account"
// @Param type query string false "Transaction type" Enums(deposit, withdrawal, transfer_in, transfer_out, payment)
// @Param status query string false "Transaction status" Enums(completed, pending, cancelled)
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 403 {object} dto.ErrorResponse "Unscoped listing requires the admin role"
// @Security BearerAuth
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := h.txnService.ListTransactions(c.Request.Context(), caller, params)
	if err != nil {
		respondError(c, err, "TRANSACTION")
		return
	}

	c.JSON(http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.ToListTransactionsResponse(page.Transactions),
		Pagination:   dto.NewPagination(params.Page, params.Limit, page.Total),
	})
}

// getTransaction godoc
// @Summary Get a transaction by ID
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	txn, err := h.txnService.GetTransaction(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, err, "TRANSACTION")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// updateTransaction godoc
// @Summary Update a transaction
// @Description Updates a transaction's status or description. Archived transactions are immutable.
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param update body dto.UpdateTransactionRequest true "Fields to update"
// @Success 200 {object} dto.TransactionResponse
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 409 {object} dto.ErrorResponse "Transaction is archived"
// @Security BearerAuth
// @Router /transactions/{id} [patch]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind transaction update request", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	txn, err := h.txnService.UpdateTransaction(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		respondError(c, err, "TRANSACTION")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// cancelTransaction godoc
// @Summary Cancel a transaction
// @Description Marks the transaction cancelled; records are never hard-deleted
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{id} [delete]
func (h *transactionHandler) cancelTransaction(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	txn, err := h.txnService.CancelTransaction(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, err, "TRANSACTION")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}
