package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mfnunez/avisia-utm-builder/internal/models"
	"github.com/mfnunez/avisia-utm-builder/internal/repository"
)

// SessionCookie is the name of the http-only cookie carrying the opaque
// session ID.
const SessionCookie = "utm_session"

const (
	ctxSessionID = "session_id"
	ctxUser      = "session_user"
)

// RequireSession resolves the session cookie against the session store and
// puts the authenticated user into the request context. Requests without a
// valid session get a 401 and never reach the handler.
func RequireSession(sessions repository.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookie)
		if err != nil || sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthenticated",
				"message": "Login required",
			})
			c.Abort()
			return
		}

		session, err := sessions.GetSession(c.Request.Context(), sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "session_expired",
				"message": "Session expired or invalid, please log in again",
			})
			c.Abort()
			return
		}

		c.Set(ctxSessionID, session.ID)
		c.Set(ctxUser, session.User)

		c.Next()
	}
}

// UserFromContext extracts the authenticated user set by RequireSession.
func UserFromContext(c *gin.Context) (models.UserInfo, bool) {
	value, exists := c.Get(ctxUser)
	if !exists {
		return models.UserInfo{}, false
	}
	user, ok := value.(models.UserInfo)
	return user, ok
}

// SessionIDFromContext extracts the session ID set by RequireSession.
func SessionIDFromContext(c *gin.Context) (string, bool) {
	value, exists := c.Get(ctxSessionID)
	if !exists {
		return "", false
	}
	id, ok := value.(string)
	return id, ok
}
