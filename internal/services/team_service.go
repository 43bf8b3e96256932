package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/team-task-board/internal/constants"
	"github.com/yukikurage/team-task-board/internal/models"
	"github.com/yukikurage/team-task-board/internal/repository"
	"github.com/yukikurage/team-task-board/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTeamNameRequired = errors.New("team name is required")
	ErrTeamNameTooLong  = fmt.Errorf("team name must be at most %d characters", constants.MaxTeamNameLength)
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamHasTasks     = errors.New("team still has tasks")
	ErrInvalidMember    = errors.New("one or more users do not exist")
	ErrAlreadyMember    = errors.New("user is already a member of the team")
	ErrNotTeamMember    = errors.New("user is not a member of the team")
	ErrMemberRequired   = errors.New("user_id or uid is required")
)

// TeamService handles teams and their membership.
type TeamService struct {
	teamRepo repository.TeamRepository
	userRepo repository.UserRepository
}

// NewTeamService creates a new TeamService.
func NewTeamService(teamRepo repository.TeamRepository, userRepo repository.UserRepository) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
	}
}

// CreateTeamInput represents input for creating a team.
type CreateTeamInput struct {
	Name      string
	MemberIDs []uint64
}

// Create creates a team with optional initial members.
func (s *TeamService) Create(input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	if len(name) > constants.MaxTeamNameLength {
		return nil, ErrTeamNameTooLong
	}

	memberIDs := utils.UniqueIDs(input.MemberIDs)
	if len(memberIDs) > 0 {
		count, err := s.userRepo.CountByIDs(memberIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to verify members: %w", err)
		}
		if int(count) != len(memberIDs) {
			return nil, ErrInvalidMember
		}
	}

	team := &models.Team{TeamName: name}
	if err := s.teamRepo.Create(team, memberIDs); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrInvalidMember
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return team, nil
}

// Get retrieves a team by ID.
func (s *TeamService) Get(teamID uint64) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

// ListForUID lists the teams the user with this uid belongs to.
func (s *TeamService) ListForUID(uid string) ([]models.Team, error) {
	user, err := s.userRepo.FindByUID(uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	teams, err := s.teamRepo.ListByUserID(user.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// Members lists the users of a team.
func (s *TeamService) Members(teamID uint64) ([]models.User, error) {
	if _, err := s.Get(teamID); err != nil {
		return nil, err
	}

	members, err := s.teamRepo.ListMembers(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// AddMemberInput identifies the user to add, by user_id or by uid.
type AddMemberInput struct {
	UserID uint64
	UID    string
}

// AddMember adds a user to a team and returns that user.
func (s *TeamService) AddMember(teamID uint64, input AddMemberInput) (*models.User, error) {
	if _, err := s.Get(teamID); err != nil {
		return nil, err
	}

	var (
		user *models.User
		err  error
	)
	switch {
	case input.UserID != 0:
		user, err = s.userRepo.FindByID(input.UserID)
	case strings.TrimSpace(input.UID) != "":
		user, err = s.userRepo.FindByUID(strings.TrimSpace(input.UID))
	default:
		return nil, ErrMemberRequired
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.teamRepo.FindMember(teamID, user.UserID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	if err := s.teamRepo.AddMember(&models.TeamMember{TeamID: teamID, UserID: user.UserID}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return user, nil
}

// RemoveMember removes a user from a team. Assignments on the team's tasks
// are left as they are.
func (s *TeamService) RemoveMember(teamID, userID uint64) error {
	if _, err := s.Get(teamID); err != nil {
		return err
	}

	if err := s.teamRepo.RemoveMember(teamID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotTeamMember
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// Delete deletes a team that no task is scoped to.
func (s *TeamService) Delete(teamID uint64) error {
	if err := s.teamRepo.Delete(teamID); err != nil {
		switch {
		case errors.Is(err, repository.ErrHasTasks), errors.Is(err, gorm.ErrForeignKeyViolated):
			return ErrTeamHasTasks
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrTeamNotFound
		default:
			return fmt.Errorf("failed to delete team: %w", err)
		}
	}
	return nil
}
