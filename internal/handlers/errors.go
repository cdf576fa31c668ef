package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"debate-tab/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrAllocationInProgress):
		status = http.StatusConflict
	case errors.Is(err, services.ErrDrawReleased),
		errors.Is(err, services.ErrDrawNotConfirmed),
		errors.Is(err, services.ErrInvalidDrawStatus),
		errors.Is(err, services.ErrInvalidAllocation),
		errors.Is(err, services.ErrDivisionsInfeasible),
		errors.Is(err, services.ErrInvalidDivisions),
		errors.Is(err, services.ErrInvalidStartTime),
		errors.Is(err, services.ErrInvalidAvailability),
		errors.Is(err, services.ErrInvalidVenues),
		errors.Is(err, services.ErrInvalidTestScore):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Printf("[Handlers] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// paramID parses a positive numeric path parameter, writing a 400 on failure
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
