package handlers

import (
	"net/http"
	"strconv"

	"debate-tab/internal/auth"
	"debate-tab/internal/models"
	"debate-tab/internal/services"

	"github.com/gin-gonic/gin"
)

type AdjudicatorHandler struct {
	adjudicatorService *services.AdjudicatorService
	actionLogService   *services.ActionLogService
}

func NewAdjudicatorHandler(
	adjudicatorService *services.AdjudicatorService,
	actionLogService *services.ActionLogService,
) *AdjudicatorHandler {
	return &AdjudicatorHandler{
		adjudicatorService: adjudicatorService,
		actionLogService:   actionLogService,
	}
}

// ListScores GET /api/admin/tournaments/:tournament_id/adjudicators/scores
func (h *AdjudicatorHandler) ListScores(c *gin.Context) {
	tournamentID, ok := paramID(c, "tournament_id")
	if !ok {
		return
	}

	scores, err := h.adjudicatorService.ListScores(c.Request.Context(), tournamentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": scores})
}

// SetTestScore POST /api/admin/tournaments/:tournament_id/adjudicators/:adj_id/test-score
func (h *AdjudicatorHandler) SetTestScore(c *gin.Context) {
	tournamentID, ok := paramID(c, "tournament_id")
	if !ok {
		return
	}
	adjID, ok := paramID(c, "adj_id")
	if !ok {
		return
	}

	var req models.SetTestScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adj, err := h.adjudicatorService.SetTestScore(c.Request.Context(), tournamentID, adjID, *req.Score, req.RoundID, auth.GetAdminName(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": adj})
}

// SetNote POST /api/admin/tournaments/:tournament_id/adjudicators/:adj_id/note
func (h *AdjudicatorHandler) SetNote(c *gin.Context) {
	tournamentID, ok := paramID(c, "tournament_id")
	if !ok {
		return
	}
	adjID, ok := paramID(c, "adj_id")
	if !ok {
		return
	}

	var req models.SetNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adj, err := h.adjudicatorService.SetNote(c.Request.Context(), tournamentID, adjID, req.Note, auth.GetAdminName(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": adj})
}

// GetActionLogs returns the tournament's action log
// GET /api/admin/tournaments/:tournament_id/logs
func (h *AdjudicatorHandler) GetActionLogs(c *gin.Context) {
	tournamentID, ok := paramID(c, "tournament_id")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logs, total, err := h.actionLogService.List(c.Request.Context(), tournamentID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
		"total":   total,
	})
}
