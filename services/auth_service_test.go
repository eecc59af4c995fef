package services

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go.pilab.hu/coursehub/cache"
	"go.pilab.hu/coursehub/domain"
	"go.pilab.hu/coursehub/session"
	"go.pilab.hu/coursehub/token"
)

// --- Mock Implementations ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, role domain.Role, user *domain.User) error {
	args := m.Called(ctx, role, user)
	return args.Error(0)
}

func (m *MockUserRepository) Get(ctx context.Context, role domain.Role, uuid string) (*domain.User, error) {
	args := m.Called(ctx, role, uuid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, role domain.Role, user *domain.User) error {
	args := m.Called(ctx, role, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, role domain.Role, uuid string) error {
	args := m.Called(ctx, role, uuid)
	return args.Error(0)
}

func (m *MockUserRepository) CountStudentsByDepartment(ctx context.Context, department string) (int64, error) {
	args := m.Called(ctx, department)
	return args.Get(0).(int64), args.Error(1)
}

// --- Tests ---

func newTestSessionManager() *session.Manager {
	return session.NewManager(
		cache.NewMemorySessionStore(),
		session.NewKeyedMutex(),
		session.Config{MaxActiveDevices: 3},
	)
}

func hashedPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	ctx := context.Background()
	email := gofakeit.Email()
	user := &domain.User{
		UUID:         "student-uuid-1",
		Email:        email,
		PasswordHash: hashedPassword(t, "correct-horse"),
		Role:         domain.RoleStudent,
	}

	users := new(MockUserRepository)
	users.On("FindByEmail", ctx, email).Return(user, nil)

	sessions := newTestSessionManager()
	tokens := token.NewManager("test-secret", time.Hour)
	svc := NewAuthService(users, sessions, tokens, NewBcryptHasher(bcrypt.MinCost))

	result, err := svc.Login(ctx, email, "correct-horse", DeviceInfo{DeviceName: "laptop"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, user.UUID, result.User.UUID)

	// The token carries the session id and the session is live.
	claims, err := tokens.Parse(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.SessionID, claims.SessionID)
	assert.Equal(t, user.UUID, claims.UserUUID)

	identity, err := sessions.Validate(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, user.UUID, identity.UserUUID)

	users.AssertExpectations(t)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	ctx := context.Background()

	users := new(MockUserRepository)
	users.On("FindByEmail", ctx, mock.Anything).Return(nil, domain.ErrUserNotFound)

	svc := NewAuthService(users, newTestSessionManager(),
		token.NewManager("test-secret", time.Hour), NewBcryptHasher(bcrypt.MinCost))

	_, err := svc.Login(ctx, "nobody@example.edu", "whatever", DeviceInfo{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	email := gofakeit.Email()
	user := &domain.User{
		UUID:         "student-uuid-1",
		Email:        email,
		PasswordHash: hashedPassword(t, "right-password"),
		Role:         domain.RoleStudent,
	}

	users := new(MockUserRepository)
	users.On("FindByEmail", ctx, email).Return(user, nil)

	sessions := newTestSessionManager()
	svc := NewAuthService(users, sessions,
		token.NewManager("test-secret", time.Hour), NewBcryptHasher(bcrypt.MinCost))

	_, err := svc.Login(ctx, email, "wrong-password", DeviceInfo{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// A failed login must not leave a session behind.
	active, err := sessions.ListSessions(ctx, user.UUID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestAuthServiceLoginEvictsAtDeviceLimit(t *testing.T) {
	ctx := context.Background()
	email := gofakeit.Email()
	user := &domain.User{
		UUID:         "student-uuid-1",
		Email:        email,
		PasswordHash: hashedPassword(t, "pw"),
		Role:         domain.RoleStudent,
	}

	users := new(MockUserRepository)
	users.On("FindByEmail", ctx, email).Return(user, nil)

	sessions := session.NewManager(
		cache.NewMemorySessionStore(),
		session.NewKeyedMutex(),
		session.Config{MaxActiveDevices: 2},
	)
	svc := NewAuthService(users, sessions,
		token.NewManager("test-secret", time.Hour), NewBcryptHasher(bcrypt.MinCost))

	var sessionIDs []string
	for i := 0; i < 3; i++ {
		result, err := svc.Login(ctx, email, "pw", DeviceInfo{})
		require.NoError(t, err)
		sessionIDs = append(sessionIDs, result.SessionID)
	}

	active, err := sessions.ListSessions(ctx, user.UUID)
	require.NoError(t, err)
	require.Len(t, active, 2)

	_, err = sessions.Validate(ctx, sessionIDs[0])
	assert.ErrorIs(t, err, session.ErrSessionInvalid)
	_, err = sessions.Validate(ctx, sessionIDs[2])
	assert.NoError(t, err)
}
