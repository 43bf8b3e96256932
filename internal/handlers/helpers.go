package handlers

import (
	"github.com/gin-gonic/gin"

	apierrors "github.com/yukikurage/team-task-board/internal/errors"
	"github.com/yukikurage/team-task-board/internal/utils"
)

// bindJSON decodes and validates the request body, answering 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return false
	}
	return true
}

// optionalQueryID parses an optional numeric query parameter.
func optionalQueryID(c *gin.Context, key string) (*uint64, bool) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, true
	}
	id, err := utils.ParseID(raw)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+key)
		return nil, false
	}
	return &id, true
}
