package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roadlink/car-booking-backend/internal/apperrors"
)

// respondError maps a classified error to a status code and a structured
// body carrying the error kind and offending identifier
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperrors.KindValidation, apperrors.KindInvalidSeat, apperrors.KindPaymentVerification:
		status = http.StatusBadRequest
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindSeatUnavailable, apperrors.KindAlreadyCancelled, apperrors.KindConflict:
		status = http.StatusConflict
	}

	body := gin.H{
		"message": appErr.Message,
		"kind":    appErr.Kind,
	}
	if appErr.Seat != "" {
		body["seat"] = appErr.Seat
	}

	c.JSON(status, body)
}
