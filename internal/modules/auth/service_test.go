package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"labbooking/internal/domain"
	"labbooking/internal/pkg/apperr"
	"labbooking/internal/pkg/jwt"
	"labbooking/internal/pkg/password"
	"labbooking/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Mock User Repository implementing the interface
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 7
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func newTestService(users *mockUserRepo) (*Service, *jwt.Service, *password.Hasher) {
	tokens := jwt.New("test-secret-123", time.Hour)
	hasher := password.NewHasher(bcrypt.MinCost)
	return NewService(users, tokens, hasher), tokens, hasher
}

func TestService_Signup_Success(t *testing.T) {
	users := new(mockUserRepo)
	svc, _, hasher := newTestService(users)

	users.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "alice" && u.Role == domain.RoleUser && hasher.Verify("secret1", u.PasswordHash)
	})).Return(nil)

	user, err := svc.Signup(context.Background(), SignupRequest{
		Username:       " alice ",
		Password:       "secret1",
		PrivilegeLevel: "user",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Empty(t, user.PasswordHash)
	users.AssertExpectations(t)
}

func TestService_Signup_UsernameTaken(t *testing.T) {
	users := new(mockUserRepo)
	svc, _, _ := newTestService(users)

	users.On("ExistsByUsername", mock.Anything, "alice").Return(true, nil)

	_, err := svc.Signup(context.Background(), SignupRequest{Username: "alice", Password: "secret1", PrivilegeLevel: "admin"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Signup_RaceOnUniqueIndex(t *testing.T) {
	users := new(mockUserRepo)
	svc, _, _ := newTestService(users)

	users.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
	users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)

	_, err := svc.Signup(context.Background(), SignupRequest{Username: "alice", Password: "secret1", PrivilegeLevel: "user"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestService_Signup_InvalidRole(t *testing.T) {
	users := new(mockUserRepo)
	svc, _, _ := newTestService(users)

	_, err := svc.Signup(context.Background(), SignupRequest{Username: "alice", Password: "secret1", PrivilegeLevel: "superuser"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	users.AssertNotCalled(t, "ExistsByUsername", mock.Anything, mock.Anything)
}

func TestService_Login(t *testing.T) {
	users := new(mockUserRepo)
	svc, tokens, hasher := newTestService(users)

	digest, err := hasher.Hash("secret1")
	require.NoError(t, err)
	stored := &domain.User{ID: 5, Username: "alice", PasswordHash: digest, Role: domain.RoleUser}
	users.On("GetByUsername", mock.Anything, "alice").Return(stored, nil)
	users.On("GetByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	t.Run("success", func(t *testing.T) {
		res, err := svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "secret1"})
		require.NoError(t, err)

		claims, err := tokens.ValidateToken(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(5), claims.UserID)
		assert.Empty(t, res.User.PasswordHash)
	})

	t.Run("wrong password", func(t *testing.T) {
		stored.PasswordHash = digest
		_, err := svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "secret1"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_Login_StoreError(t *testing.T) {
	users := new(mockUserRepo)
	svc, _, _ := newTestService(users)
	users.On("GetByUsername", mock.Anything, "alice").Return(nil, errors.New("connection refused"))

	_, err := svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "x"})
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestService_Identify(t *testing.T) {
	users := new(mockUserRepo)
	svc, tokens, _ := newTestService(users)

	users.On("GetByID", mock.Anything, int64(5)).Return(&domain.User{ID: 5, Username: "alice", PasswordHash: "h", Role: domain.RoleAdmin}, nil)
	users.On("GetByID", mock.Anything, int64(6)).Return(nil, gorm.ErrRecordNotFound)

	t.Run("valid", func(t *testing.T) {
		token, err := tokens.GenerateToken(5)
		require.NoError(t, err)

		user, err := svc.Identify(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, user.Role)
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("deleted user", func(t *testing.T) {
		token, err := tokens.GenerateToken(6)
		require.NoError(t, err)

		_, err = svc.Identify(context.Background(), token)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := svc.Identify(context.Background(), "")
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("foreign signature", func(t *testing.T) {
		token, err := jwt.New("other-secret", time.Hour).GenerateToken(5)
		require.NoError(t, err)

		_, err = svc.Identify(context.Background(), token)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := jwt.New("test-secret-123", -time.Minute).GenerateToken(5)
		require.NoError(t, err)

		_, err = svc.Identify(context.Background(), token)
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})
}

func TestService_Signup_AdminIsSelfService(t *testing.T) {
	users := new(mockUserRepo)
	svc, _, _ := newTestService(users)

	users.On("ExistsByUsername", mock.Anything, "prof").Return(false, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.RoleAdmin
	})).Return(nil)

	user, err := svc.Signup(context.Background(), SignupRequest{Username: "prof", Password: "secret1", PrivilegeLevel: "admin"})
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
}
