package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/sunubank/bankapi/internal/core/ports/services"
	"github.com/sunubank/bankapi/internal/dto"
	"github.com/sunubank/bankapi/internal/middleware"
	"github.com/sunubank/bankapi/internal/platform/config"
	"github.com/ulule/limiter/v3"
)

// authHandler handles login, token refresh and federated sign-in.
type authHandler struct {
	tokenService portssvc.TokenSvcFacade
	userService  portssvc.UserSvcFacade
}

// registerAuthRoutes registers the public authentication routes. Login is
// rate limited per client IP.
func registerAuthRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer, loginLimiter *limiter.Limiter) {
	h := &authHandler{tokenService: services.Token, userService: services.User}

	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", middleware.RateLimit(loginLimiter), h.login)
		auth.POST("/refresh", h.refresh)
		auth.POST("/google", h.googleSignIn)
	}

	authed := r.Group("/api/v1/auth", middleware.AuthMiddleware(cfg.JWTSecret))
	{
		authed.POST("/logout", h.logout)
		authed.GET("/me", h.me)
	}
}

// login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 429 {object} dto.ErrorResponse "Too many attempts"
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind login request", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	tokens, err := h.tokenService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "USER")
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// refresh godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param token body dto.RefreshRequest true "Refresh token"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} dto.ErrorResponse "Invalid or expired refresh token"
// @Router /auth/refresh [post]
func (h *authHandler) refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tokens, err := h.tokenService.Refresh(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "USER")
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// googleSignIn godoc
// @Summary Sign in with a Google ID token
// @Tags auth
// @Accept json
// @Produce json
// @Param token body dto.GoogleSignInRequest true "Google ID token"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} dto.ErrorResponse "Invalid ID token"
// @Router /auth/google [post]
func (h *authHandler) googleSignIn(c *gin.Context) {
	var req dto.GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tokens, err := h.tokenService.GoogleSignIn(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "USER")
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// logout godoc
// @Summary Log out and revoke the refresh token
// @Tags auth
// @Produce json
// @Success 204 "Logged out"
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *authHandler) logout(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	if err := h.tokenService.Logout(c.Request.Context(), caller); err != nil {
		respondError(c, err, "USER")
		return
	}
	c.Status(http.StatusNoContent)
}

// me godoc
// @Summary Get the authenticated user
// @Tags auth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (h *authHandler) me(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), caller.UserID)
	if err != nil {
		respondError(c, err, "USER")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}
