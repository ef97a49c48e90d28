package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mfnunez/avisia-utm-builder/internal/auth"
	"github.com/mfnunez/avisia-utm-builder/internal/middleware"
	"github.com/mfnunez/avisia-utm-builder/internal/models"
	"github.com/mfnunez/avisia-utm-builder/internal/repository"
	"go.uber.org/zap"
)

const sessionMaxAge = 12 * time.Hour

type AuthHandler struct {
	authenticator auth.Authenticator
	sessions      repository.SessionRepository
	logger        *zap.Logger
}

func NewAuthHandler(authenticator auth.Authenticator, sessions repository.SessionRepository, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		sessions:      sessions,
		logger:        logger,
	}
}

// Login starts the OAuth flow: a fresh state nonce is parked in the session
// store and the user is sent to the provider's consent screen.
func (h *AuthHandler) Login(c *gin.Context) {
	state := uuid.NewString()

	if err := h.sessions.SetState(c.Request.Context(), state); err != nil {
		h.logger.Error("Failed to store oauth state", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to start login",
		})
		return
	}

	c.Redirect(http.StatusFound, h.authenticator.AuthCodeURL(state))
}

// Callback finishes the OAuth flow. Every failure leaves the user
// unauthenticated with the reason in the response; nothing here is fatal
// to the application.
func (h *AuthHandler) Callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_callback",
			Message: "Missing state or code parameter",
		})
		return
	}

	// state nonces are single-use, replayed callbacks fail here
	if err := h.sessions.TakeState(c.Request.Context(), state); err != nil {
		h.logger.Warn("Rejected oauth callback with unknown state", zap.Error(err))
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_state",
			Message: "Login attempt expired or replayed, please log in again",
		})
		return
	}

	user, err := h.authenticator.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.Warn("Failed to authenticate user", zap.Error(err))
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "authentication_failed",
			Message: "Authentication failed: " + err.Error(),
		})
		return
	}

	session := &models.Session{
		ID:        uuid.NewString(),
		User:      *user,
		CreatedAt: time.Now(),
	}
	if err := h.sessions.CreateSession(c.Request.Context(), session); err != nil {
		h.logger.Error("Failed to create session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create session",
		})
		return
	}

	h.logger.Info("User logged in", zap.String("email", user.Email))

	c.SetCookie(middleware.SessionCookie, session.ID, int(sessionMaxAge.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if sessionID, err := c.Cookie(middleware.SessionCookie); err == nil && sessionID != "" {
		if err := h.sessions.DeleteSession(c.Request.Context(), sessionID); err != nil {
			h.logger.Warn("Failed to delete session", zap.Error(err))
		}
	}

	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated user behind RequireSession.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthenticated",
			Message: "Login required",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}
