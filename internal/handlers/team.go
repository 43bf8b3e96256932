package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/team-task-board/internal/dto"
	apierrors "github.com/yukikurage/team-task-board/internal/errors"
	"github.com/yukikurage/team-task-board/internal/middleware"
	"github.com/yukikurage/team-task-board/internal/services"
	"github.com/yukikurage/team-task-board/internal/utils"
)

// TeamHandler serves teams and their membership.
type TeamHandler struct {
	teamService *services.TeamService
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// CreateTeam creates a team with optional initial members.
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req dto.CreateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.Create(services.CreateTeamInput{
		Name:      req.TeamName,
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}

	members, err := h.teamService.Members(team.TeamID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamDetailDTO(*team, members))
}

// ListUserTeams returns the teams of the user whose uid is in the path.
func (h *TeamHandler) ListUserTeams(c *gin.Context) {
	teams, err := h.teamService.ListForUID(c.Param("ref"))
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTOs(teams))
}

// DeleteTeam deletes the team loaded by middleware.LoadTeam.
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, errors.New("team not found in context"))
		return
	}

	if err := h.teamService.Delete(team.TeamID); err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Team deleted successfully"})
}

// ListMembers returns the members of the team loaded by middleware.LoadTeam.
func (h *TeamHandler) ListMembers(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, errors.New("team not found in context"))
		return
	}

	members, err := h.teamService.Members(team.TeamID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTOs(members))
}

// AddMember adds a user, named by user_id or uid, to the team.
func (h *TeamHandler) AddMember(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, errors.New("team not found in context"))
		return
	}

	var req dto.AddMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.teamService.AddMember(team.TeamID, services.AddMemberInput{
		UserID: req.UserID,
		UID:    req.UID,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// RemoveMember removes the user in the path from the team.
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, errors.New("team not found in context"))
		return
	}

	userID, err := utils.ParseID(c.Param("user_id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.teamService.RemoveMember(team.TeamID, userID); err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Member removed successfully"})
}

func respondTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrTeamNameTooLong),
		errors.Is(err, services.ErrInvalidMember),
		errors.Is(err, services.ErrMemberRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAlreadyMember):
		apierrors.AlreadyExists(c, err.Error())
	case errors.Is(err, services.ErrTeamHasTasks):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrNotTeamMember):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, err)
	}
}
