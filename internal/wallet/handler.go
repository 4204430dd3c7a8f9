package wallet

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"tradeforce/internal/auth"
	"tradeforce/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service        Service
	supportContact string
}

func NewHandler(service Service, supportContact string) *Handler {
	return &Handler{
		service:        service,
		supportContact: supportContact,
	}
}

type SubmitTransactionRequest struct {
	Amount      string `json:"amount" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Method      string `json:"method"`
	Contact     string `json:"contact"`
	Description string `json:"description"`
}

type TransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
	Amount      string       `json:"amount" example:"100.00"`
}

type DecisionResponse struct {
	Transaction  *Transaction `json:"transaction"`
	BalanceAfter string       `json:"balance_after,omitempty" example:"135.00"`
}

// GetBalance godoc
// @Summary      Get wallet
// @Description  Returns the authenticated user's wallet and formatted balance.
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  gin.H
// @Failure      401  {object}  gin.H
// @Failure      404  {object}  gin.H
// @Router       /wallet [get]
func (h *Handler) GetBalance(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	w, err := h.service.GetWallet(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wallet":  w,
		"balance": FormatCents(w.BalanceCents),
	})
}

// SubmitTransaction godoc
// @Summary      Submit a deposit or withdrawal
// @Description  Creates a pending transaction; an admin settles it later. Deposits include payment instructions for the support contact.
// @Tags         wallet
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      SubmitTransactionRequest  true  "Transaction data"
// @Success      201      {object}  gin.H
// @Failure      400      {object}  gin.H
// @Failure      401      {object}  gin.H
// @Failure      403      {object}  gin.H
// @Router       /wallet/transactions [post]
func (h *Handler) SubmitTransaction(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req SubmitTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amountCents, err := ParseAmountCents(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	method := req.Method
	if method == "" {
		method = "whatsapp"
	}

	description := req.Description
	if description == "" && req.Contact != "" {
		description = fmt.Sprintf("%s %s via %s", method, req.Type, req.Contact)
	}

	tx, err := h.service.Submit(c.Request.Context(), userID, SubmitRequest{
		AmountCents: amountCents,
		Type:        req.Type,
		Method:      method,
		Description: description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := gin.H{
		"transaction": tx,
		"amount":      FormatCents(tx.AmountCents),
	}
	if tx.Type == TypeDeposit {
		resp["pay_to"] = h.supportContact
		resp["message"] = fmt.Sprintf(
			"Send %s quoting reference %s to %s to complete your deposit.",
			FormatCents(tx.AmountCents), tx.Reference, h.supportContact,
		)
	} else {
		resp["message"] = "Withdrawal request received and awaiting review."
	}

	c.JSON(http.StatusCreated, resp)
}

// ListTransactions godoc
// @Summary      List own transactions
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query  int  false  "Page size"
// @Param        offset  query  int  false  "Offset"
// @Success      200  {array}  Transaction
// @Failure      401  {object}  gin.H
// @Router       /wallet/transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txs, err := h.service.ListMyTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, txs)
}

// ListPending godoc
// @Summary      List pending transactions
// @Description  Admin queue of undecided transactions, oldest first.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Transaction
// @Failure      403  {object}  gin.H
// @Router       /admin/transactions/pending [get]
func (h *Handler) ListPending(c *gin.Context) {
	caller, ok := auth.GetCaller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	txs, err := h.service.ListPending(c.Request.Context(), caller)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, txs)
}

// Approve godoc
// @Summary      Approve a pending transaction
// @Description  Settles the transaction and applies the balance change atomically. Returns 409 if already decided, 422 if a withdrawal would overdraw.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  int  true  "Transaction ID"
// @Success      200  {object}  DecisionResponse
// @Failure      403  {object}  gin.H
// @Failure      404  {object}  gin.H
// @Failure      409  {object}  gin.H
// @Failure      422  {object}  gin.H
// @Router       /admin/transactions/{id}/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	caller, ok := auth.GetCaller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	tx, balanceAfter, err := h.service.Approve(c.Request.Context(), caller, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, DecisionResponse{
		Transaction:  tx,
		BalanceAfter: FormatCents(balanceAfter),
	})
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

// Reject godoc
// @Summary      Reject a pending transaction
// @Description  Marks the transaction rejected. Never touches the wallet balance.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  int            true   "Transaction ID"
// @Param        request  body  RejectRequest  false  "Rejection reason"
// @Success      200  {object}  DecisionResponse
// @Failure      403  {object}  gin.H
// @Failure      404  {object}  gin.H
// @Failure      409  {object}  gin.H
// @Router       /admin/transactions/{id}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	caller, ok := auth.GetCaller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	var req RejectRequest
	_ = c.ShouldBindJSON(&req)

	tx, err := h.service.Reject(c.Request.Context(), caller, id, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, DecisionResponse{Transaction: tx})
}

// Fail godoc
// @Summary      Mark a pending transaction failed
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  int  true  "Transaction ID"
// @Success      200  {object}  DecisionResponse
// @Failure      403  {object}  gin.H
// @Failure      404  {object}  gin.H
// @Failure      409  {object}  gin.H
// @Router       /admin/transactions/{id}/fail [post]
func (h *Handler) Fail(c *gin.Context) {
	caller, ok := auth.GetCaller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	tx, err := h.service.Fail(c.Request.Context(), caller, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, DecisionResponse{Transaction: tx})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrAdminRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
	case errors.Is(err, ErrAccountInactive):
		c.JSON(http.StatusForbidden, gin.H{"error": "account is deactivated"})
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrUnknownType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrWalletNotFound), errors.Is(err, ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrStatusConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "transaction already decided"})
	case errors.Is(err, ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient funds; transaction left pending"})
	default:
		logger.Errorf("wallet request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
