package handlers

import (
	"context"
	"errors"
	"net/http"

	"portfolio-doctor/internal/api/models"
	"portfolio-doctor/internal/data"
	"portfolio-doctor/internal/model"

	"github.com/gin-gonic/gin"
)

// writeError maps err to a status code and error code and writes the
// standard error body.
func writeError(c *gin.Context, err error) {
	var mdErr *data.MarketDataError
	if errors.As(err, &mdErr) {
		status := http.StatusBadGateway
		switch mdErr.StatusCode {
		case http.StatusNotFound:
			status = http.StatusNotFound
		case http.StatusTooManyRequests:
			status = http.StatusTooManyRequests
		}
		c.JSON(status, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "DATA_FETCH_ERROR",
				Message: mdErr.Message,
				Details: map[string]interface{}{
					"status_code": mdErr.StatusCode,
					"retry_after": mdErr.RetryAfter,
					"url":         mdErr.URL,
				},
			},
		})
		return
	}

	status, code := classify(err)
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidAllocation):
		return http.StatusBadRequest, "INVALID_ALLOCATION"
	case errors.Is(err, model.ErrYearNotFound):
		return http.StatusBadRequest, "YEAR_NOT_FOUND"
	case errors.Is(err, model.ErrInsufficientData), errors.Is(err, model.ErrEmptyCycleSet):
		return http.StatusUnprocessableEntity, "INSUFFICIENT_DATA"
	case errors.Is(err, model.ErrInvalidOptions):
		return http.StatusBadRequest, "INVALID_CONFIG"
	case errors.Is(err, data.ErrDatasetNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "SIMULATION_ERROR"
	default:
		return http.StatusInternalServerError, "SIMULATION_ERROR"
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	})
}
