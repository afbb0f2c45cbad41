package auth

import (
	"context"

	"labbooking/internal/domain"
	"labbooking/internal/pkg/jwt"
)

type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

type TokenService interface {
	GenerateToken(userID int64) (string, error)
	ValidateToken(tokenStr string) (*jwt.Claims, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}
