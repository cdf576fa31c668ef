package handlers

import (
	"net/http"

	"debate-tab/internal/auth"
	"debate-tab/internal/models"
	"debate-tab/internal/services"

	"github.com/gin-gonic/gin"
)

type AllocationHandler struct {
	allocationService *services.AllocationService
}

func NewAllocationHandler(allocationService *services.AllocationService) *AllocationHandler {
	return &AllocationHandler{
		allocationService: allocationService,
	}
}

// CreateAllocation runs the automatic adjudicator allocation for a round
// POST /api/admin/rounds/:round_id/allocation
func (h *AllocationHandler) CreateAllocation(c *gin.Context) {
	roundID, ok := paramID(c, "round_id")
	if !ok {
		return
	}

	resp, err := h.allocationService.CreateAllocation(c.Request.Context(), roundID, auth.GetAdminName(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetAllocation returns the current allocation of a round
// GET /api/admin/rounds/:round_id/allocation
func (h *AllocationHandler) GetAllocation(c *gin.Context) {
	roundID, ok := paramID(c, "round_id")
	if !ok {
		return
	}

	resp, err := h.allocationService.GetAllocation(c.Request.Context(), roundID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SaveAllocation stores manually edited panels
// PUT /api/admin/rounds/:round_id/allocation
func (h *AllocationHandler) SaveAllocation(c *gin.Context) {
	roundID, ok := paramID(c, "round_id")
	if !ok {
		return
	}

	var req models.SaveAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.allocationService.SaveAllocation(c.Request.Context(), roundID, &req, auth.GetAdminName(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetConflicts returns conflicts and prior pairings per adjudicator
// GET /api/admin/rounds/:round_id/conflicts
func (h *AllocationHandler) GetConflicts(c *gin.Context) {
	roundID, ok := paramID(c, "round_id")
	if !ok {
		return
	}

	resp, err := h.allocationService.GetConflicts(c.Request.Context(), roundID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
