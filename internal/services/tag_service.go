package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/team-task-board/internal/constants"
	"github.com/yukikurage/team-task-board/internal/models"
	"github.com/yukikurage/team-task-board/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTagNameRequired  = errors.New("tag name is required")
	ErrTagNameTooLong   = fmt.Errorf("tag names must be at most %d characters", constants.MaxTagNameLength)
	ErrTagNameHasComma  = errors.New("tag names cannot contain commas")
	ErrTagScopeRequired = errors.New("a tag needs a user_id or a team_id")
	ErrTagExists        = errors.New("tag already exists in this scope")
	ErrTagNotFound      = errors.New("tag not found")
)

// TagService handles explicit tag management. Tags attached through task
// updates are created by the task repository.
type TagService struct {
	tagRepo  repository.TagRepository
	userRepo repository.UserRepository
	teamRepo repository.TeamRepository
}

// NewTagService creates a new TagService.
func NewTagService(tagRepo repository.TagRepository, userRepo repository.UserRepository, teamRepo repository.TeamRepository) *TagService {
	return &TagService{
		tagRepo:  tagRepo,
		userRepo: userRepo,
		teamRepo: teamRepo,
	}
}

// CreateTagInput represents input for creating a tag.
type CreateTagInput struct {
	Name   string
	UserID *uint64
	TeamID *uint64
}

// Create creates a tag in the given scope.
func (s *TagService) Create(input CreateTagInput) (*models.Tag, error) {
	name := strings.TrimSpace(input.Name)
	if err := validateTagName(name); err != nil {
		return nil, err
	}
	if input.UserID == nil && input.TeamID == nil {
		return nil, ErrTagScopeRequired
	}

	if input.UserID != nil {
		if _, err := s.userRepo.FindByID(*input.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
	}
	if input.TeamID != nil {
		if _, err := s.teamRepo.FindByID(*input.TeamID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTeamNotFound
			}
			return nil, fmt.Errorf("failed to find team: %w", err)
		}
	}

	if _, err := s.tagRepo.FindByName(name, input.UserID, input.TeamID); err == nil {
		return nil, ErrTagExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check tag: %w", err)
	}

	tag := &models.Tag{Name: name, UserID: input.UserID, TeamID: input.TeamID}
	if err := s.tagRepo.Create(tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTagExists
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

// List lists tags, optionally narrowed by scope.
func (s *TagService) List(filter repository.TagFilter) ([]models.Tag, error) {
	tags, err := s.tagRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// Delete deletes a tag and detaches it from all tasks.
func (s *TagService) Delete(tagID uint64) error {
	if err := s.tagRepo.Delete(tagID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTagNotFound
		}
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}

func validateTagName(name string) error {
	switch {
	case name == "":
		return ErrTagNameRequired
	case len(name) > constants.MaxTagNameLength:
		return ErrTagNameTooLong
	case strings.Contains(name, ","):
		return ErrTagNameHasComma
	}
	return nil
}
