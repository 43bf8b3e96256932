package dto

import (
	"time"

	"github.com/yukikurage/team-task-board/internal/models"
)

// TeamDTO represents a team in API responses
type TeamDTO struct {
	TeamID    uint64    `json:"team_id"`
	TeamName  string    `json:"team_name"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamDetailDTO is a team with its members
type TeamDetailDTO struct {
	TeamDTO
	Members []UserDTO `json:"members"`
}

// CreateTeamRequest is the body of POST /teams
type CreateTeamRequest struct {
	TeamName  string   `json:"team_name" binding:"required,max=100"`
	MemberIDs []uint64 `json:"member_ids"`
}

// AddMemberRequest names the user to add by user_id or uid
type AddMemberRequest struct {
	UserID uint64 `json:"user_id,omitempty"`
	UID    string `json:"uid,omitempty"`
}

// ToTeamDTO converts a Team model to TeamDTO
func ToTeamDTO(team models.Team) TeamDTO {
	return TeamDTO{
		TeamID:    team.TeamID,
		TeamName:  team.TeamName,
		CreatedAt: team.CreatedAt,
	}
}

// ToTeamDTOs converts a slice of teams
func ToTeamDTOs(teams []models.Team) []TeamDTO {
	out := make([]TeamDTO, len(teams))
	for i, t := range teams {
		out[i] = ToTeamDTO(t)
	}
	return out
}

// ToTeamDetailDTO converts a team with its members
func ToTeamDetailDTO(team models.Team, members []models.User) TeamDetailDTO {
	return TeamDetailDTO{
		TeamDTO: ToTeamDTO(team),
		Members: ToUserDTOs(members),
	}
}
