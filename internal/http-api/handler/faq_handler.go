package handler

import (
	"net/http"

	"github.com/rajhackss/organ-donor-portal/internal/http-api/dto"
	"github.com/rajhackss/organ-donor-portal/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

// FAQHandler fronts the rule-based responder. Unauthenticated on purpose:
// the assistant answers pre-signup questions.
type FAQHandler struct {
	svc service.FAQService
}

func NewFAQHandler(svc service.FAQService) *FAQHandler {
	return &FAQHandler{svc: svc}
}

func (h *FAQHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/faq", h.Ask)
}

func (h *FAQHandler) Ask(c *gin.Context) {
	var req dto.FAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.FAQResponse{Answer: h.svc.Answer(req.Question)})
}
