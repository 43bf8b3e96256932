package dto

import "github.com/yukikurage/team-task-board/internal/models"

// TagDTO represents a tag in API responses
type TagDTO struct {
	TagID  uint64  `json:"tag_id"`
	Name   string  `json:"name"`
	UserID *uint64 `json:"user_id"`
	TeamID *uint64 `json:"team_id"`
}

// CreateTagRequest is the body of POST /tags
type CreateTagRequest struct {
	Name   string  `json:"name" binding:"required,max=50"`
	UserID *uint64 `json:"user_id,omitempty"`
	TeamID *uint64 `json:"team_id,omitempty"`
}

// ToTagDTO converts a Tag model to TagDTO
func ToTagDTO(tag models.Tag) TagDTO {
	return TagDTO{
		TagID:  tag.TagID,
		Name:   tag.Name,
		UserID: tag.UserID,
		TeamID: tag.TeamID,
	}
}

// ToTagDTOs converts a slice of tags
func ToTagDTOs(tags []models.Tag) []TagDTO {
	out := make([]TagDTO, len(tags))
	for i, t := range tags {
		out[i] = ToTagDTO(t)
	}
	return out
}
