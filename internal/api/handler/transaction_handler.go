package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/gft-fund-ledger/internal/domain/client"
	"github.com/gft-fund-ledger/internal/domain/fund"
	"github.com/gft-fund-ledger/internal/domain/transaction"
	"github.com/gft-fund-ledger/internal/engine/service"
	"github.com/gft-fund-ledger/internal/engine/validation"
)

// TransactionHandler handles HTTP requests for fund transaction operations
type TransactionHandler struct {
	engine service.TransactionService
	logger *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, engine service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		engine: engine,
		logger: logger,
	}
}

// Subscribe opens a new fund subscription for a client
func (h *TransactionHandler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.logger.Error("Invalid subscription amount", "amount", req.Amount, "error", err)
		RespondBadRequest(c, "Invalid amount: must be a decimal number")
		return
	}
	if !amount.IsPositive() {
		h.logger.Error("Non-positive subscription amount", "amount", req.Amount)
		RespondBadRequest(c, "Invalid amount: must be greater than zero")
		return
	}

	record, err := h.engine.Subscribe(c.Request.Context(), req.ClientID, req.FundID, amount)
	if err != nil {
		h.respondOperationError(c, err)
		return
	}

	RespondCreated(c, mapTransactionToResponse(record))
}

// Cancel closes a client's subscription to a fund and refunds the invested amount
func (h *TransactionHandler) Cancel(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	record, err := h.engine.Cancel(c.Request.Context(), req.ClientID, req.FundID)
	if err != nil {
		h.respondOperationError(c, err)
		return
	}

	RespondOK(c, mapTransactionToResponse(record))
}

// History returns a client's transaction records, newest first
func (h *TransactionHandler) History(c *gin.Context) {
	clientID := c.Param("id")

	records, err := h.engine.History(c.Request.Context(), clientID)
	if err != nil {
		h.logger.Error("Failed to get transaction history", "client_id", clientID, "error", err)
		RespondInternalError(c)
		return
	}

	transactions := make([]TransactionResponse, 0, len(records))
	for _, record := range records {
		transactions = append(transactions, mapTransactionToResponse(record))
	}

	RespondOK(c, TransactionListResponse{Transactions: transactions})
}

// respondOperationError maps engine errors to HTTP status codes: unknown
// client or fund is 404, a business rule rejection is 400 with its kind as
// the error code, an exhausted retry budget is 409.
func (h *TransactionHandler) respondOperationError(c *gin.Context, err error) {
	var verr *validation.Error
	switch {
	case errors.Is(err, client.ErrClientNotFound{}):
		RespondNotFound(c, err.Error())
	case errors.Is(err, fund.ErrFundNotFound{}):
		RespondNotFound(c, err.Error())
	case errors.As(err, &verr):
		RespondWithError(c, http.StatusBadRequest, string(verr.Kind), verr.Message)
	case errors.Is(err, service.ErrTooManyConflicts{}):
		RespondConflict(c, err.Error())
	default:
		h.logger.Error("Operation failed", "error", err)
		RespondInternalError(c)
	}
}

// mapTransactionToResponse maps a transaction record to a response DTO
func mapTransactionToResponse(record *transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		BusinessTransactionID: record.BusinessTransactionID,
		ClientID:              record.ClientID,
		FundID:                record.FundID,
		FundName:              record.FundName,
		Type:                  string(record.Type),
		Amount:                record.Amount.StringFixed(2),
		Date:                  record.Date.Format(time.RFC3339),
		ClientBalanceBefore:   record.ClientBalanceBefore.StringFixed(2),
		ClientBalanceAfter:    record.ClientBalanceAfter.StringFixed(2),
		Status:                string(record.Status),
		ErrorMessage:          record.ErrorMessage,
	}
}
