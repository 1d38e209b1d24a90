package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"slotify/services/booking"
	"slotify/utils"
)

// respondError maps engine errors onto HTTP statuses: validation 400,
// not-found 404, conflict 409, cross-tenant 403, everything else 500.
func respondError(c *gin.Context, err error) {
	var (
		validation *booking.ValidationError
		notFound   *booking.NotFoundError
		conflict   *booking.ConflictError
		forbidden  *booking.ForbiddenError
	)
	switch {
	case errors.As(err, &validation):
		utils.JSONError(c, http.StatusBadRequest, "validation failed", validation.Error())
	case errors.As(err, &notFound):
		utils.JSONError(c, http.StatusNotFound, "not found", notFound.Error())
	case errors.As(err, &conflict):
		utils.JSONError(c, http.StatusConflict, conflict.Reason, conflict.Error())
	case errors.As(err, &forbidden):
		utils.JSONError(c, http.StatusForbidden, "forbidden", forbidden.Error())
	default:
		respondInternal(c, "internal error", err)
	}
}

// respondInternal logs the full cause and answers 500 with a fixed body.
// Storage and lock-store details stay in the logs, never in the response.
func respondInternal(c *gin.Context, message string, err error) {
	utils.GetLogger().Error(message,
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, utils.ErrorResponse{
		Message: message,
		Details: "An unexpected error occurred. Please try again later.",
	})
}
