package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"slotify/models"
	"slotify/services/reservation"
	"slotify/utils"
)

// AcquireLock handles POST /api/locks: a short-lived checkout hold on part of
// a slot's capacity, scoped to the caller's session.
func AcquireLock(c *gin.Context) {
	tenantID := c.GetString("tenantID")
	var req models.LockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	lock, err := LockService.Acquire(c.Request.Context(), tenantID, req)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrSlotNotFound):
			utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
		case errors.Is(err, reservation.ErrLockConflict):
			utils.JSONError(c, http.StatusConflict, "capacity", err.Error())
		default:
			respondInternal(c, "failed to acquire lock", err)
		}
		return
	}
	c.JSON(http.StatusCreated, lock)
}

// ValidateLock handles GET /api/locks/:id. Always 200: an expired or foreign
// lock reports valid=false rather than an error, since checkout UIs poll this.
func ValidateLock(c *gin.Context) {
	status, err := LockService.Validate(c.Request.Context(), c.Param("id"), c.Query("sessionId"))
	if err != nil {
		respondInternal(c, "failed to validate lock", err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// ReleaseLock handles DELETE /api/locks/:id. Owner-only.
func ReleaseLock(c *gin.Context) {
	if err := LockService.Release(c.Request.Context(), c.Param("id"), c.Query("sessionId")); err != nil {
		if errors.Is(err, reservation.ErrLockNotFound) {
			utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
			return
		}
		respondInternal(c, "failed to release lock", err)
		return
	}
	c.Status(http.StatusNoContent)
}
