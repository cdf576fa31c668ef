package handlers

import (
	"net/http"

	"debate-tab/internal/auth"
	"debate-tab/internal/models"
	"debate-tab/internal/services"

	"github.com/gin-gonic/gin"
)

type DivisionHandler struct {
	divisionService *services.DivisionService
}

func NewDivisionHandler(divisionService *services.DivisionService) *DivisionHandler {
	return &DivisionHandler{
		divisionService: divisionService,
	}
}

// CreateDivisionAllocation rebuilds divisions and assigns teams
// POST /api/admin/tournaments/:tournament_id/divisions/allocate
func (h *DivisionHandler) CreateDivisionAllocation(c *gin.Context) {
	tournamentID, ok := paramID(c, "tournament_id")
	if !ok {
		return
	}

	resp, err := h.divisionService.CreateDivisionAllocation(c.Request.Context(), tournamentID, auth.GetAdminName(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

// ListDivisions GET /api/admin/tournaments/:tournament_id/divisions
func (h *DivisionHandler) ListDivisions(c *gin.Context) {
	tournamentID, ok := paramID(c, "tournament_id")
	if !ok {
		return
	}

	groups, err := h.divisionService.ListDivisions(c.Request.Context(), tournamentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": groups})
}

// SaveDivisions moves teams between divisions
// PUT /api/admin/tournaments/:tournament_id/divisions
func (h *DivisionHandler) SaveDivisions(c *gin.Context) {
	tournamentID, ok := paramID(c, "tournament_id")
	if !ok {
		return
	}

	var req models.SaveDivisionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	groups, err := h.divisionService.SaveDivisions(c.Request.Context(), tournamentID, &req, auth.GetAdminName(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": groups})
}
