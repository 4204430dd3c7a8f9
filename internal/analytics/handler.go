package analytics

import (
	"errors"
	"net/http"

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

// GetDashboard godoc
// @Summary      Platform analytics
// @Description  User counts, registration trend, pending work and total held balance.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Dashboard
// @Failure      401  {object}  gin.H
// @Failure      403  {object}  gin.H
// @Router       /admin/analytics [get]
func (h *Handler) GetDashboard(c *gin.Context) {
	caller, ok := auth.GetCaller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	dashboard, err := h.service.Dashboard(c.Request.Context(), caller)
	if err != nil {
		if errors.Is(err, auth.ErrAdminRequired) {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		logger.Errorf("analytics dashboard failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load analytics"})
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
