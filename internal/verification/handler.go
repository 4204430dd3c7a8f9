package verification

import (
	"errors"
	"net/http"
	"strconv"

	"tradeforce/internal/auth"
	"tradeforce/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type SubmitVerificationRequest struct {
	DocumentType string  `json:"document_type" binding:"required"`
	FrontRef     string  `json:"front_ref" binding:"required"`
	BackRef      *string `json:"back_ref"`
}

type ReviewRequest struct {
	Decision string  `json:"decision" binding:"required"`
	Notes    *string `json:"notes"`
}

// Submit godoc
// @Summary      Submit identity verification
// @Description  Upserts the caller's verification request; resubmission replaces the previous documents and resets the status to pending.
// @Tags         verification
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      SubmitVerificationRequest  true  "Document references"
// @Success      201      {object}  VerificationRequest
// @Failure      400      {object}  gin.H
// @Failure      401      {object}  gin.H
// @Router       /verification [post]
func (h *Handler) Submit(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req SubmitVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.Submit(c.Request.Context(), userID, SubmitRequest{
		DocumentType: req.DocumentType,
		FrontRef:     req.FrontRef,
		BackRef:      req.BackRef,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetMine godoc
// @Summary      Get own verification request
// @Tags         verification
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  VerificationRequest
// @Failure      401  {object}  gin.H
// @Failure      404  {object}  gin.H
// @Router       /verification [get]
func (h *Handler) GetMine(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	req, err := h.service.GetMine(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, req)
}

// ListPending godoc
// @Summary      List pending verification requests
// @Description  Admin review queue, oldest first.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  VerificationRequest
// @Failure      403  {object}  gin.H
// @Router       /admin/verifications/pending [get]
func (h *Handler) ListPending(c *gin.Context) {
	caller, ok := auth.GetCaller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	reqs, err := h.service.ListPending(c.Request.Context(), caller)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reqs)
}

// Review godoc
// @Summary      Review a verification request
// @Description  Records an admin decision. A pending decision requests more information and keeps the request open.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  int            true  "Request ID"
// @Param        request  body  ReviewRequest  true  "Decision and optional notes"
// @Success      200  {object}  VerificationRequest
// @Failure      400  {object}  gin.H
// @Failure      403  {object}  gin.H
// @Failure      404  {object}  gin.H
// @Failure      409  {object}  gin.H
// @Router       /admin/verifications/{id}/review [post]
func (h *Handler) Review(c *gin.Context) {
	caller, ok := auth.GetCaller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reviewed, err := h.service.Review(c.Request.Context(), caller, id, req.Decision, req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reviewed)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrAdminRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
	case errors.Is(err, ErrUnknownDocumentType), errors.Is(err, ErrMissingFrontRef), errors.Is(err, ErrUnknownDecision):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "verification request not found"})
	case errors.Is(err, ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, gin.H{"error": "verification request already finalized"})
	default:
		logger.Errorf("verification request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
