package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"bus_tracker/internal/models"
	"bus_tracker/internal/repository"
)

type RegisterInput struct {
	UserName string      `json:"user_name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required"`
	Role     models.Role `json:"role" binding:"required"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ProfileInput struct {
	UserName string `json:"user_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

type UserService struct {
	store repository.Store
	cost  int
}

func NewUserService(store repository.Store) *UserService {
	return &UserService{store: store, cost: bcrypt.DefaultCost}
}

// SetHashCost lowers the bcrypt cost, for tests.
func (s *UserService) SetHashCost(cost int) { s.cost = cost }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		UserName: strings.TrimSpace(in.UserName),
		Email:    normalizeEmail(in.Email),
		Password: string(hash),
		Role:     in.Role,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user registered")
	return user, nil
}

// Authenticate checks credentials and returns the matching user. Unknown
// emails and wrong passwords fail the same way.
func (s *UserService) Authenticate(ctx context.Context, in LoginInput) (*models.User, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	user, err := s.store.Users().ByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) Profile(ctx context.Context, p models.Principal) (*models.User, error) {
	user, err := s.store.Users().ByID(ctx, p.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) UpdateProfile(ctx context.Context, p models.Principal, in ProfileInput) (*models.User, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	err := s.store.Users().UpdateProfile(ctx, p.ID, strings.TrimSpace(in.UserName), normalizeEmail(in.Email))
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return nil, ErrDuplicateEmail
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrUserNotFound
	case err != nil:
		return nil, err
	}
	return s.Profile(ctx, p)
}

func (s *UserService) SetImage(ctx context.Context, p models.Principal, path string) (*models.User, error) {
	err := s.store.Users().SetImage(ctx, p.ID, path)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.Profile(ctx, p)
}

func (s *UserService) List(ctx context.Context, p models.Principal) ([]models.User, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.store.Users().List(ctx)
}

// EnsureDefaultAdmin registers an admin account unless the email is
// already taken. It reports whether an account was created.
func (s *UserService) EnsureDefaultAdmin(ctx context.Context, name, email, password string) (bool, error) {
	_, err := s.store.Users().ByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}

	_, err = s.Register(ctx, RegisterInput{
		UserName: name,
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	})
	if errors.Is(err, ErrDuplicateEmail) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	logrus.WithField("email", email).Info("default admin account created")
	return true, nil
}
