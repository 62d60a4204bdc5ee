package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vinculo/crm-service/internal/core/domain"
	logicv1 "github.com/vinculo/crm-service/internal/logic/v1"
	"github.com/vinculo/crm-service/middleware"
	pkgzerolog "github.com/vinculo/crm-service/pkg/logger/zerolog"
)

// Handler groups the auth HTTP handlers for API v1.
// Dependencies are injected via the constructor — no global state.
type Handler struct {
	sessions *logicv1.Container
	provider domain.Provider
	profiles logicv1.ProfileStore
}

// NewHandler creates a new Handler.
func NewHandler(sessions *logicv1.Container, provider domain.Provider, profiles logicv1.ProfileStore) *Handler {
	return &Handler{sessions: sessions, provider: provider, profiles: profiles}
}

// Login handles HTTP request for user sign-in.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := pkgzerolog.FromContext(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		logger.Error().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	if authErr := h.sessions.SignIn(ctx, req.Email, req.Password); authErr != nil {
		span.AddEvent("authentication.failed")
		logger.Warn().Str("code", authErr.Code).Msg("Login rejected")
		c.JSON(authStatus(authErr), gin.H{"error": authErr.Message, "code": authErr.Code})
		return
	}

	state := h.sessions.Current()
	logger.Info().Int64("user_id", state.User.ID).Msg("Login successful")
	c.JSON(http.StatusOK, domain.AuthResponse{Token: state.Token, User: state.User})
}

// Register handles HTTP request for user sign-up.
func (h *Handler) Register(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := pkgzerolog.FromContext(ctx)

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		logger.Error().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	if authErr := h.sessions.SignUp(ctx, req.Email, req.Password, req.Name); authErr != nil {
		logger.Warn().Str("code", authErr.Code).Str("email", req.Email).Msg("Registration rejected")
		c.JSON(authStatus(authErr), gin.H{"error": authErr.Message, "code": authErr.Code})
		return
	}

	state := h.sessions.Current()
	if !state.Authenticated {
		// Account created, session pending out-of-band confirmation.
		logger.Info().Str("email", req.Email).Msg("Registration pending confirmation")
		c.JSON(http.StatusCreated, domain.AuthResponse{ConfirmationRequired: true})
		return
	}

	logger.Info().Int64("user_id", state.User.ID).Msg("Registration successful")
	c.JSON(http.StatusCreated, domain.AuthResponse{Token: state.Token, User: state.User})
}

// Logout invalidates the current session. Always succeeds from the
// caller's perspective: local state is cleared even when the provider
// call fails.
func (h *Handler) Logout(c *gin.Context) {
	h.sessions.SignOut(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// GetMe returns the authenticated user together with their profile.
// GET /api/v1/auth/me
// Authorization: Bearer <token>
func (h *Handler) GetMe(c *gin.Context) {
	ctx := c.Request.Context()
	logger := pkgzerolog.FromContext(ctx)

	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
		return
	}

	// Profile absence is not an error; the identity alone is enough.
	profile, err := h.profiles.FindByID(ctx, user.ID)
	if err != nil {
		logger.Warn().Err(err).Int64("user_id", user.ID).Msg("Profile load failed")
		profile = nil
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "profile": profile})
}

// UpdateMyProfile shallow-merges profile fields for the authenticated user.
func (h *Handler) UpdateMyProfile(c *gin.Context) {
	ctx := c.Request.Context()

	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
		return
	}

	var patch domain.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profiles.Update(ctx, user.ID, patch)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		pkgzerolog.FromContext(ctx).Error().Err(err).Msg("Profile update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// RequestPasswordReset accepts a reset request. The response is identical
// for known and unknown emails.
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	ctx := c.Request.Context()

	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.provider.RequestPasswordReset(ctx, req.Email); err != nil {
		pkgzerolog.FromContext(ctx).Error().Err(err).Msg("Password reset request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "ok"})
}

// UpdatePassword replaces the caller's password and invalidates their
// other sessions.
func (h *Handler) UpdatePassword(c *gin.Context) {
	ctx := c.Request.Context()

	var req struct {
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
		return
	}

	if err := h.provider.UpdatePassword(ctx, token, req.Password); err != nil {
		pkgzerolog.FromContext(ctx).Error().Err(err).Msg("Password update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func authStatus(err *logicv1.AuthError) int {
	switch err.Code {
	case logicv1.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case logicv1.CodeUserExists:
		return http.StatusConflict
	case logicv1.CodeNotConfirmed:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return "", false
	}
	return header[len(prefix):], true
}
