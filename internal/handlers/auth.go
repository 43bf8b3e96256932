package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yukikurage/team-task-board/internal/constants"
	"github.com/yukikurage/team-task-board/internal/dto"
	apierrors "github.com/yukikurage/team-task-board/internal/errors"
	"github.com/yukikurage/team-task-board/internal/middleware"
	"github.com/yukikurage/team-task-board/internal/services"
)

// AuthHandler coordinates session-related HTTP handlers.
type AuthHandler struct {
	userService *services.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
	}
}

// Login resolves a uid to its user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.AuthRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Authenticate(req.UID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.InvalidCredentials(c, "No user with this uid")
			return
		}
		apierrors.InternalError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.UserID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Logout removes the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

// GetCurrentUser returns the session user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.userService.GetByID(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			// the account was deleted under a live session
			apierrors.Unauthorized(c, "Not authenticated")
			return
		}
		apierrors.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}
