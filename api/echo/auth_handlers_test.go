package echo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go.pilab.hu/coursehub/cache"
	"go.pilab.hu/coursehub/domain"
	"go.pilab.hu/coursehub/services"
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

type MockDeviceResetRepository struct {
	mock.Mock
}

func (m *MockDeviceResetRepository) Create(ctx context.Context, req *domain.DeviceResetRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockDeviceResetRepository) Get(ctx context.Context, requestID string) (*domain.DeviceResetRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeviceResetRequest), args.Error(1)
}

func (m *MockDeviceResetRepository) FindPending(ctx context.Context, studentUUID string) (*domain.DeviceResetRequest, error) {
	args := m.Called(ctx, studentUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeviceResetRequest), args.Error(1)
}

func (m *MockDeviceResetRepository) List(ctx context.Context, status string) ([]*domain.DeviceResetRequest, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DeviceResetRequest), args.Error(1)
}

func (m *MockDeviceResetRepository) Resolve(ctx context.Context, requestID, status string, by domain.Identity, at time.Time) (*domain.DeviceResetRequest, error) {
	args := m.Called(ctx, requestID, status, by, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeviceResetRequest), args.Error(1)
}

// --- Fixture ---

type apiFixture struct {
	echo     *echo.Echo
	users    *MockUserRepository
	resets   *MockDeviceResetRepository
	sessions *session.Manager
	tokens   *token.Manager
}

func newAPIFixture(t *testing.T, cfg session.Config) *apiFixture {
	t.Helper()

	users := new(MockUserRepository)
	resets := new(MockDeviceResetRepository)
	sessions := session.NewManager(cache.NewMemorySessionStore(), session.NewKeyedMutex(), cfg)
	tokens := token.NewManager("test-secret", time.Hour)
	hasher := services.NewBcryptHasher(bcrypt.MinCost)

	api := NewAPI(Deps{
		Auth:        services.NewAuthService(users, sessions, tokens, hasher),
		DeviceReset: services.NewDeviceResetService(resets, sessions),
		Sessions:    sessions,
		Tokens:      tokens,
		UserRepo:    users,
	})

	e := echo.New()
	api.RegisterRoutes(e)

	return &apiFixture{echo: e, users: users, resets: resets, sessions: sessions, tokens: tokens}
}

func (f *apiFixture) request(method, path, body, bearer string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) stubUser(t *testing.T, role domain.Role, email, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{
		UUID:         string(role) + "-uuid",
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Test " + string(role),
		Department:   "cardiology",
		Role:         role,
	}
	f.users.On("FindByEmail", mock.Anything, email).Return(user, nil)
	return user
}

func (f *apiFixture) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := f.request(http.MethodPost, "/auth/login",
		`{"email_id":"`+email+`","password":"`+password+`"}`, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

// --- Tests ---

func TestLoginHandler(t *testing.T) {
	f := newAPIFixture(t, session.Config{MaxActiveDevices: 3})
	f.stubUser(t, domain.RoleStudent, "alice@example.edu", "pw")

	rec := f.request(http.MethodPost, "/auth/login",
		`{"email_id":"alice@example.edu","password":"pw"}`, "",
		map[string]string{"X-Device-Name": "my laptop"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, domain.RoleStudent, resp.Role)
	assert.Equal(t, "cardiology", resp.UserData["department"])

	// Device name from the header lands on the session.
	claims, err := f.tokens.Parse(resp.AccessToken)
	require.NoError(t, err)
	active, err := f.sessions.ListSessions(context.Background(), claims.UserUUID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "my laptop", active[0].DeviceName)
}

func TestLoginHandlerRejectsBadCredentials(t *testing.T) {
	f := newAPIFixture(t, session.Config{MaxActiveDevices: 3})
	f.stubUser(t, domain.RoleStudent, "alice@example.edu", "pw")
	f.users.On("FindByEmail", mock.Anything, "nobody@example.edu").
		Return(nil, domain.ErrUserNotFound)

	rec := f.request(http.MethodPost, "/auth/login",
		`{"email_id":"alice@example.edu","password":"wrong"}`, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.request(http.MethodPost, "/auth/login",
		`{"email_id":"nobody@example.edu","password":"pw"}`, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.request(http.MethodPost, "/auth/login", `{"email_id":"","password":""}`, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSessionsHandler(t *testing.T) {
	f := newAPIFixture(t, session.Config{MaxActiveDevices: 3})
	f.stubUser(t, domain.RoleStudent, "alice@example.edu", "pw")

	tok := f.login(t, "alice@example.edu", "pw")
	f.login(t, "alice@example.edu", "pw")

	rec := f.request(http.MethodGet, "/auth/sessions", "", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Sessions []*domain.Session `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Sessions, 2)
}

func TestLogoutHandlerInvalidatesToken(t *testing.T) {
	f := newAPIFixture(t, session.Config{MaxActiveDevices: 3})
	f.stubUser(t, domain.RoleStudent, "alice@example.edu", "pw")
	tok := f.login(t, "alice@example.edu", "pw")

	rec := f.request(http.MethodPost, "/auth/logout", "", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The token still verifies cryptographically but the session is revoked.
	rec = f.request(http.MethodGet, "/auth/sessions", "", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutAllHandler(t *testing.T) {
	f := newAPIFixture(t, session.Config{MaxActiveDevices: 5})
	user := f.stubUser(t, domain.RoleStudent, "alice@example.edu", "pw")

	tok := f.login(t, "alice@example.edu", "pw")
	f.login(t, "alice@example.edu", "pw")
	f.login(t, "alice@example.edu", "pw")

	rec := f.request(http.MethodPost, "/auth/logout-all", "", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Revoked int64 `json:"revoked"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Revoked)

	active, err := f.sessions.ListSessions(context.Background(), user.UUID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestDeviceLimitOverHTTP(t *testing.T) {
	f := newAPIFixture(t, session.Config{MaxActiveDevices: 2})
	f.stubUser(t, domain.RoleStudent, "alice@example.edu", "pw")

	first := f.login(t, "alice@example.edu", "pw")
	f.login(t, "alice@example.edu", "pw")
	f.login(t, "alice@example.edu", "pw")

	// The oldest device got evicted by the third login.
	rec := f.request(http.MethodGet, "/auth/sessions", "", first, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminSessionEndpoints(t *testing.T) {
	f := newAPIFixture(t, session.Config{MaxActiveDevices: 5})
	f.stubUser(t, domain.RoleAdmin, "admin@example.edu", "pw")
	student := f.stubUser(t, domain.RoleStudent, "alice@example.edu", "pw")

	adminTok := f.login(t, "admin@example.edu", "pw")
	studentTok := f.login(t, "alice@example.edu", "pw")
	f.login(t, "alice@example.edu", "pw")

	// Students cannot reach the operator surface.
	rec := f.request(http.MethodGet, "/sessions/users/"+student.UUID, "", studentTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.request(http.MethodGet, "/sessions/users/"+student.UUID, "", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp struct {
		Sessions []*domain.Session `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Len(t, listResp.Sessions, 2)

	rec = f.request(http.MethodPost, "/sessions/"+listResp.Sessions[0].SessionID+"/revoke", "", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"revoked":true`)

	rec = f.request(http.MethodPost, "/sessions/users/"+student.UUID+"/revoke-all", "", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	active, err := f.sessions.ListSessions(context.Background(), student.UUID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestDeviceResetFlow(t *testing.T) {
	f := newAPIFixture(t, session.Config{MaxActiveDevices: 5})
	f.stubUser(t, domain.RoleAdmin, "admin@example.edu", "pw")
	student := f.stubUser(t, domain.RoleStudent, "alice@example.edu", "pw")

	studentTok := f.login(t, "alice@example.edu", "pw")
	adminTok := f.login(t, "admin@example.edu", "pw")

	f.resets.On("FindPending", mock.Anything, student.UUID).
		Return(nil, domain.ErrResetRequestNotFound)
	f.resets.On("Create", mock.Anything, mock.Anything).Return(nil)

	rec := f.request(http.MethodPost, "/devices/reset-request",
		`{"reason":"lost all my devices"}`, studentTok, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var req domain.DeviceResetRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &req))
	assert.Equal(t, domain.ResetPending, req.Status)

	resolved := &domain.DeviceResetRequest{
		RequestID:   req.RequestID,
		StudentUUID: student.UUID,
		Status:      domain.ResetApproved,
	}
	f.resets.On("Resolve", mock.Anything, req.RequestID, domain.ResetApproved,
		mock.Anything, mock.Anything).Return(resolved, nil)

	// Only admins may approve.
	rec = f.request(http.MethodPost, "/devices/reset-requests/"+req.RequestID+"/approve", "", studentTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.request(http.MethodPost, "/devices/reset-requests/"+req.RequestID+"/approve", "", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Approval cleared the student's sessions.
	rec = f.request(http.MethodGet, "/auth/sessions", "", studentTok, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeHandler(t *testing.T) {
	f := newAPIFixture(t, session.Config{MaxActiveDevices: 3})
	user := f.stubUser(t, domain.RoleStudent, "alice@example.edu", "pw")
	f.users.On("Get", mock.Anything, domain.RoleStudent, user.UUID).Return(user, nil)

	tok := f.login(t, "alice@example.edu", "pw")
	rec := f.request(http.MethodGet, "/auth/me", "", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, user.UUID, got.UUID)
	assert.Equal(t, user.Email, got.Email)
}

func TestHealthHandler(t *testing.T) {
	f := newAPIFixture(t, session.Config{MaxActiveDevices: 3})

	rec := f.request(http.MethodGet, "/healthz", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
