package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sunubank/bankapi/internal/core/domain"
)

// callerCtxKey is the key used to store the authenticated caller identity.
const callerCtxKey = contextKey("caller")

// GetCallerFromContext retrieves the authenticated caller from the request
// context. It returns the caller and a boolean indicating if it was found.
func GetCallerFromContext(c *gin.Context) (domain.Caller, bool) {
	return CallerFromCtx(c.Request.Context())
}

// CallerFromCtx retrieves the authenticated caller from a standard context.
func CallerFromCtx(ctx context.Context) (domain.Caller, bool) {
	caller, ok := ctx.Value(callerCtxKey).(domain.Caller)
	return caller, ok
}

// withCaller stores the caller identity in the context.
func withCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, callerCtxKey, caller)
}
