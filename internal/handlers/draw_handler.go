package handlers

import (
	"context"
	"net/http"

	"debate-tab/internal/auth"
	"debate-tab/internal/models"
	"debate-tab/internal/services"

	"github.com/gin-gonic/gin"
)

type DrawHandler struct {
	drawService *services.DrawService
}

func NewDrawHandler(drawService *services.DrawService) *DrawHandler {
	return &DrawHandler{
		drawService: drawService,
	}
}

type drawTransition func(ctx context.Context, roundID uint, actor string) (*models.Round, error)

func (h *DrawHandler) transition(c *gin.Context, fn drawTransition) {
	roundID, ok := paramID(c, "round_id")
	if !ok {
		return
	}

	round, err := fn(c.Request.Context(), roundID, auth.GetAdminName(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": round})
}

// ConfirmDraw POST /api/admin/rounds/:round_id/draw/confirm
func (h *DrawHandler) ConfirmDraw(c *gin.Context) {
	h.transition(c, h.drawService.ConfirmDraw)
}

// ReleaseDraw POST /api/admin/rounds/:round_id/draw/release
func (h *DrawHandler) ReleaseDraw(c *gin.Context) {
	h.transition(c, h.drawService.ReleaseDraw)
}

// UnreleaseDraw POST /api/admin/rounds/:round_id/draw/unrelease
func (h *DrawHandler) UnreleaseDraw(c *gin.Context) {
	h.transition(c, h.drawService.UnreleaseDraw)
}

// UpdateDebateImportance sets the importance of a debate
// POST /api/admin/rounds/:round_id/debates/:debate_id/importance
func (h *DrawHandler) UpdateDebateImportance(c *gin.Context) {
	roundID, ok := paramID(c, "round_id")
	if !ok {
		return
	}
	debateID, ok := paramID(c, "debate_id")
	if !ok {
		return
	}

	var req models.UpdateImportanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	debate, err := h.drawService.UpdateDebateImportance(c.Request.Context(), roundID, debateID, *req.Importance, auth.GetAdminName(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": debate})
}

// GetAvailability lists the adjudicators available in a round
// GET /api/admin/rounds/:round_id/availability/adjudicators
func (h *DrawHandler) GetAvailability(c *gin.Context) {
	roundID, ok := paramID(c, "round_id")
	if !ok {
		return
	}

	ids, err := h.drawService.GetAdjudicatorAvailability(c.Request.Context(), roundID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": ids})
}

// SetAvailability replaces the adjudicators available in a round
// PUT /api/admin/rounds/:round_id/availability/adjudicators
func (h *DrawHandler) SetAvailability(c *gin.Context) {
	roundID, ok := paramID(c, "round_id")
	if !ok {
		return
	}

	var req models.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ids, err := h.drawService.SetAdjudicatorAvailability(c.Request.Context(), roundID, req.AdjudicatorIDs, auth.GetAdminName(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": ids})
}

// CopyAvailability copies adjudicator availability from the previous round
// POST /api/admin/rounds/:round_id/availability/adjudicators/copy
func (h *DrawHandler) CopyAvailability(c *gin.Context) {
	roundID, ok := paramID(c, "round_id")
	if !ok {
		return
	}

	ids, err := h.drawService.CopyPreviousAvailability(c.Request.Context(), roundID, auth.GetAdminName(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": ids})
}

// SaveVenues places debates in venues
// PUT /api/admin/rounds/:round_id/venues
func (h *DrawHandler) SaveVenues(c *gin.Context) {
	roundID, ok := paramID(c, "round_id")
	if !ok {
		return
	}

	var req models.SaveVenuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	debates, err := h.drawService.SaveVenues(c.Request.Context(), roundID, &req, auth.GetAdminName(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": debates})
}

// SetStartTime sets when a round starts
// POST /api/admin/rounds/:round_id/start-time
func (h *DrawHandler) SetStartTime(c *gin.Context) {
	roundID, ok := paramID(c, "round_id")
	if !ok {
		return
	}

	var req models.StartTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	round, err := h.drawService.SetRoundStartTime(c.Request.Context(), roundID, req.StartTime, auth.GetAdminName(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": round})
}
