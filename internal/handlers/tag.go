package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/team-task-board/internal/dto"
	apierrors "github.com/yukikurage/team-task-board/internal/errors"
	"github.com/yukikurage/team-task-board/internal/repository"
	"github.com/yukikurage/team-task-board/internal/services"
	"github.com/yukikurage/team-task-board/internal/utils"
)

// TagHandler serves explicit tag management.
type TagHandler struct {
	tagService *services.TagService
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tagService *services.TagService) *TagHandler {
	return &TagHandler{
		tagService: tagService,
	}
}

// ListTags lists tags, narrowed by ?user_id= and ?team_id=
func (h *TagHandler) ListTags(c *gin.Context) {
	userID, ok := optionalQueryID(c, "user_id")
	if !ok {
		return
	}
	teamID, ok := optionalQueryID(c, "team_id")
	if !ok {
		return
	}

	tags, err := h.tagService.List(repository.TagFilter{UserID: userID, TeamID: teamID})
	if err != nil {
		respondTagError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTagDTOs(tags))
}

// CreateTag creates a tag in a user or team scope.
func (h *TagHandler) CreateTag(c *gin.Context) {
	var req dto.CreateTagRequest
	if !bindJSON(c, &req) {
		return
	}

	tag, err := h.tagService.Create(services.CreateTagInput{
		Name:   req.Name,
		UserID: req.UserID,
		TeamID: req.TeamID,
	})
	if err != nil {
		respondTagError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTagDTO(*tag))
}

// DeleteTag deletes a tag and detaches it from every task.
func (h *TagHandler) DeleteTag(c *gin.Context) {
	tagID, err := utils.ParseID(c.Param("tag_id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid tag ID")
		return
	}

	if err := h.tagService.Delete(tagID); err != nil {
		respondTagError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Tag deleted successfully"})
}

func respondTagError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTagNameRequired),
		errors.Is(err, services.ErrTagNameTooLong),
		errors.Is(err, services.ErrTagNameHasComma),
		errors.Is(err, services.ErrTagScopeRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTagExists):
		apierrors.AlreadyExists(c, err.Error())
	case errors.Is(err, services.ErrTagNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTeamNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, err)
	}
}
