package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sunubank/bankapi/internal/apperrors"
	"github.com/sunubank/bankapi/internal/core/domain"
	"github.com/sunubank/bankapi/internal/dto"
	"github.com/sunubank/bankapi/internal/middleware"
)

// respondError translates a service error into the error envelope. The
// resource name scopes the NOT_FOUND code (ACCOUNT_NOT_FOUND etc.) so
// clients can branch without parsing messages.
func respondError(c *gin.Context, err error, resource string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("VALIDATION_ERROR", err.Error()))
	case errors.Is(err, apperrors.ErrInvalidRange):
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse("INVALID_BLOCK_RANGE", err.Error()))
	case errors.Is(err, apperrors.ErrAlreadyBlocked):
		c.JSON(http.StatusConflict, dto.NewErrorResponse("ALREADY_BLOCKED", "account is already blocked"))
	case errors.Is(err, apperrors.ErrAlreadyArchived):
		c.JSON(http.StatusConflict, dto.NewErrorResponse("ALREADY_ARCHIVED", "resource is archived"))
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, dto.NewErrorResponse("DUPLICATE", err.Error()))
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, dto.NewErrorResponse("CONFLICT", "resource was modified concurrently, retry"))
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(resource+"_NOT_FOUND", "resource not found"))
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("UNAUTHORIZED", "invalid credentials"))
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.NewErrorResponse("FORBIDDEN", "insufficient privileges"))
	default:
		logger.Error("Unhandled service error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("INTERNAL_ERROR", "an internal error occurred"))
	}
}

// respondBindError reports a request binding/validation failure.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse("VALIDATION_ERROR", err.Error()))
}

// mustCaller fetches the authenticated caller; the auth middleware guarantees
// it on protected routes, so absence is a programming error.
func mustCaller(c *gin.Context) (domain.Caller, bool) {
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Caller missing from authenticated request context")
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("UNAUTHORIZED", "authentication required"))
	}
	return caller, ok
}
