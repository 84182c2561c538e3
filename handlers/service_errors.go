package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/fsnd/coffee-shop/services"
	"github.com/fsnd/coffee-shop/utils"
)

// HandleServiceError maps a service error onto the failure envelope
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	var domainErr *services.DomainError
	errors.As(err, &domainErr)
	details := services.GetErrorDetails(err)
	if len(details) == 0 {
		details = nil
	}

	var writeErr error
	switch {
	case services.IsNotFoundError(err):
		writeErr = utils.WriteNotFound(w, domainErr.Message)

	case services.IsValidationError(err):
		writeErr = utils.WriteUnprocessable(w, domainErr.Message, details)

	case services.IsConflictError(err):
		writeErr = utils.WriteConflict(w, domainErr.Message)

	case services.IsUnavailableError(err):
		logger.Error("storage unavailable", zap.Error(err))
		writeErr = utils.WriteServiceUnavailable(w, "Service temporarily unavailable")

	case services.IsInternalError(err):
		// Log internal errors but return generic message
		logger.Error("internal server error", zap.Error(err))
		writeErr = utils.WriteInternalServerError(w, "An internal error occurred")

	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		writeErr = utils.WriteInternalServerError(w, "An unexpected error occurred")
	}

	if writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}

	if domainErr != nil {
		logger.Debug("handled service error",
			zap.String("type", string(domainErr.Type)),
			zap.String("message", domainErr.Message),
			zap.Any("details", domainErr.Details))
	}
}
