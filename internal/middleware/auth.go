package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yukikurage/team-task-board/internal/constants"
	apierrors "github.com/yukikurage/team-task-board/internal/errors"
)

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := SessionUserID(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// SessionUserID reads the user id from the session without requiring one.
func SessionUserID(c *gin.Context) (uint64, bool) {
	session := sessions.Default(c)
	return toUserID(session.Get(constants.ContextKeyUserID))
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUserID(userID)
}

func toUserID(v any) (uint64, bool) {
	switch id := v.(type) {
	case uint64:
		return id, id != 0
	case uint:
		return uint64(id), id != 0
	case int:
		if id <= 0 {
			return 0, false
		}
		return uint64(id), true
	case int64:
		if id <= 0 {
			return 0, false
		}
		return uint64(id), true
	default:
		return 0, false
	}
}
