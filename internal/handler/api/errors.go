package api

import (
	"context"
	"errors"
	"net/http"

	"StockCast/internal/domain/models"
	xhttp "StockCast/pkg/http"
)

// toAppError maps engine and provider failures onto response errors.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	field, reason := "", err.Error()
	var pe *models.ParamError
	if errors.As(err, &pe) {
		field, reason = pe.Field, pe.Reason
	}

	switch {
	case errors.Is(err, models.ErrInvalidParameter):
		return xhttp.NewAppError("INVALID_PARAMETER", field, reason, http.StatusBadRequest).WithError(err)
	case errors.Is(err, models.ErrInsufficientData):
		return xhttp.NewAppError("INSUFFICIENT_DATA", field, reason, http.StatusUnprocessableEntity).WithError(err)
	case errors.Is(err, models.ErrSymbolNotFound):
		return xhttp.NotFoundError(err.Error()).WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.NewAppError("ERR_TIMEOUT", "", "operation timed out", http.StatusGatewayTimeout).WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}
