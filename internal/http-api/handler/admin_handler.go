package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rajhackss/organ-donor-portal/internal/http-api/dto"
	"github.com/rajhackss/organ-donor-portal/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler owns the verification workflow. All routes sit behind
// RequireAdmin.
type AdminHandler struct {
	svc service.ProfileService
}

func NewAdminHandler(svc service.ProfileService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users", h.ListUsers)
	rg.PUT("/users/:id/status", h.SetStatus)
}

// ListUsers returns every profile plus the dashboard counters.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, stats, err := h.svc.ListUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"stats": stats,
	})
}

// SetStatus drives the verification state machine for one profile.
func (h *AdminHandler) SetStatus(c *gin.Context) {
	targetID := c.Param("id")

	var req dto.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.svc.SetStatus(ctx, targetID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, user)
}
