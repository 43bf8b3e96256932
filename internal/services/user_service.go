package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/team-task-board/internal/constants"
	"github.com/yukikurage/team-task-board/internal/identity"
	"github.com/yukikurage/team-task-board/internal/models"
	"github.com/yukikurage/team-task-board/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameTooLong  = fmt.Errorf("username must be at most %d characters", constants.MaxUsernameLength)
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailTooLong     = fmt.Errorf("email must be at most %d characters", constants.MaxEmailLength)
	ErrInvalidEmail     = errors.New("email is not a valid address")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrEmailTaken       = errors.New("email already exists")
	ErrUIDCollision     = errors.New("derived uid is already taken by another user")
	ErrUserExists       = errors.New("user already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserHasTasks     = errors.New("user still owns tasks")
)

// UserService handles registration and uid lookups.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// RegisterInput represents the information needed to create a user.
type RegisterInput struct {
	Username string
	Email    string
}

// Register creates a user whose uid is derived from (email, username).
// A uid already held by someone else is reported as ErrUIDCollision; the uid
// is never salted or regenerated.
func (s *UserService) Register(input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	switch {
	case username == "":
		return nil, ErrUsernameRequired
	case len(username) > constants.MaxUsernameLength:
		return nil, ErrUsernameTooLong
	case email == "":
		return nil, ErrEmailRequired
	case len(email) > constants.MaxEmailLength:
		return nil, ErrEmailTooLong
	case !strings.Contains(email, "@"):
		return nil, ErrInvalidEmail
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	uid, err := identity.DeriveUID(email, username)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByUID(uid); err == nil {
		return nil, ErrUIDCollision
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check uid: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		UID:      uid,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race with a concurrent registration
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate resolves a uid to its user. The uid is a lookup key, not a secret.
func (s *UserService) Authenticate(uid string) (*models.User, error) {
	return s.GetByUID(strings.TrimSpace(uid))
}

// GetByID retrieves a user by surrogate key.
func (s *UserService) GetByID(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// GetByUID retrieves a user by uid.
func (s *UserService) GetByUID(uid string) (*models.User, error) {
	if uid == "" {
		return nil, ErrUserNotFound
	}
	user, err := s.userRepo.FindByUID(uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// Delete removes the user identified by uid. Users who created tasks cannot
// be deleted until those tasks are gone.
func (s *UserService) Delete(uid string) error {
	user, err := s.GetByUID(uid)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(user.UserID); err != nil {
		switch {
		case errors.Is(err, repository.ErrHasTasks), errors.Is(err, gorm.ErrForeignKeyViolated):
			return ErrUserHasTasks
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrUserNotFound
		default:
			return fmt.Errorf("failed to delete user: %w", err)
		}
	}
	return nil
}
