package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"labbooking/internal/domain"
	"labbooking/internal/pkg/apperr"
	"labbooking/internal/repository"

	"gorm.io/gorm"
)

// Service contains all business logic for authentication
type Service struct {
	users  UserRepositoryInterface
	jwt    TokenService
	hasher PasswordHasher
}

type LoginResult struct {
	User        *domain.User
	AccessToken string
}

func NewService(users UserRepositoryInterface, jwt TokenService, hasher PasswordHasher) *Service {
	return &Service{users: users, jwt: jwt, hasher: hasher}
}

// Signup registers a user with the requested role; admin is self-service.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	role, err := domain.ParseRole(req.PrivilegeLevel)
	if err != nil {
		return nil, ErrInvalidRole
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, apperr.Validation("username must not be empty")
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// Login authenticates a username/password pair and issues an access token.
// Unknown users and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	user.PasswordHash = ""
	return &LoginResult{User: user, AccessToken: token}, nil
}

// Identify resolves a bearer token to a live user.
func (s *Service) Identify(ctx context.Context, token string) (*domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidToken
	}

	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, ErrInvalidToken.Message, err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.Role.Valid() {
		return nil, ErrInvalidToken
	}

	user.PasswordHash = ""
	return user, nil
}
