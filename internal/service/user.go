package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"chainride/internal/domain"
	"chainride/internal/repository"
)

// AddressAssigner hands out ledger addresses for new users.
type AddressAssigner interface {
	Assign(ctx context.Context) (string, error)
}

// UserService handles registration and account lookups.
type UserService struct {
	userRepo repository.UserRepository
	assigner AddressAssigner
	log      *logrus.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, assigner AddressAssigner, log *logrus.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		assigner: assigner,
		log:      log,
	}
}

// RegisterInput contains the parameters for registering a user.
type RegisterInput struct {
	Username        string
	Email           string
	Contact         string
	CurrentLocation string
	ImageURL        string
	Role            domain.UserRole
}

// Register creates a user and assigns it the next ledger address from the
// account pool. Emails are unique.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Username == "" {
		return nil, ErrInvalidUsername
	}
	if in.Email == "" {
		return nil, ErrInvalidEmail
	}
	if in.Role != domain.UserRoleRider && in.Role != domain.UserRoleDriver {
		return nil, ErrInvalidRole
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	address, err := s.assigner.Assign(ctx)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:              uuid.New().String(),
		Username:        in.Username,
		Email:           in.Email,
		Contact:         in.Contact,
		CurrentLocation: in.CurrentLocation,
		ImageURL:        in.ImageURL,
		Role:            in.Role,
		LedgerAddress:   address,
		CreatedAt:       time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":        user.ID,
		"role":           user.Role,
		"ledger_address": user.LedgerAddress,
	}).Info("user registered")

	return user, nil
}

// Login looks a user up by email.
func (s *UserService) Login(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, ErrInvalidEmail
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Get retrieves a user by ID.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
