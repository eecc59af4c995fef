package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"go.pilab.hu/coursehub/domain"
	"go.pilab.hu/coursehub/middleware"
	"go.pilab.hu/coursehub/services"
)

type loginRequest struct {
	EmailID  string `json:"email_id"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	Role        domain.Role    `json:"role"`
	UserData    map[string]any `json:"user_data"`
}

// LoginHandler authenticates an admin, student or teacher without the client
// naming the role; the matching collection decides it. A successful login
// creates a device session whose id travels in the token's sid claim.
func (a *API) LoginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.EmailID == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email_id and password are required")
	}

	result, err := a.auth.Login(c.Request().Context(), req.EmailID, req.Password, services.DeviceInfo{
		DeviceName: c.Request().Header.Get("X-Device-Name"),
		UserAgent:  c.Request().UserAgent(),
		IPAddress:  c.RealIP(),
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, loginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
		Role:        result.User.Role,
		UserData:    userPayload(result.User),
	})
}

// userPayload shapes the login response per role, excluding anything
// sensitive.
func userPayload(u *domain.User) map[string]any {
	data := map[string]any{
		"uuid_id":  u.UUID,
		"email_id": u.Email,
	}
	switch u.Role {
	case domain.RoleAdmin:
		data["college_name"] = u.CollegeName
		data["total_student_allow_count"] = u.StudentAllowCount
	case domain.RoleStudent:
		data["student_name"] = u.Name
		data["department"] = u.Department
		if u.SubDepartment != "" {
			data["sub_department"] = u.SubDepartment
		}
	case domain.RoleTeacher:
		data["name"] = u.Name
		if u.Bio != "" {
			data["bio"] = u.Bio
		}
	}
	return data
}

// MeHandler returns the calling user's own profile.
func (a *API) MeHandler(c echo.Context) error {
	identity := middleware.MustIdentity(c)
	user, err := a.userRepo.Get(c.Request().Context(), identity.Role, identity.UserUUID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// ListSessionsHandler returns the caller's active sessions, oldest first.
func (a *API) ListSessionsHandler(c echo.Context) error {
	identity := middleware.MustIdentity(c)
	sessions, err := a.sessions.ListSessions(c.Request().Context(), identity.UserUUID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"sessions": sessions})
}

// LogoutHandler revokes the caller's current session. Idempotent: logging out
// twice is not an error.
func (a *API) LogoutHandler(c echo.Context) error {
	identity := middleware.MustIdentity(c)
	if _, err := a.sessions.Logout(c.Request().Context(), identity.SessionID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"detail": "Logged out"})
}

// ListUserSessionsHandler lets an admin inspect another user's active
// sessions.
func (a *API) ListUserSessionsHandler(c echo.Context) error {
	sessions, err := a.sessions.ListSessions(c.Request().Context(), c.Param("user_uuid"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"sessions": sessions})
}

// RevokeSessionHandler revokes one session by id on behalf of an admin.
// Reports whether the call changed anything; revoking twice is not an error.
func (a *API) RevokeSessionHandler(c echo.Context) error {
	changed, err := a.sessions.Logout(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"revoked": changed})
}

// RevokeUserSessionsHandler revokes every active session of the given user.
func (a *API) RevokeUserSessionsHandler(c echo.Context) error {
	count, err := a.sessions.LogoutAll(c.Request().Context(), c.Param("user_uuid"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"revoked": count})
}

// LogoutAllHandler revokes every session of the caller, including the current
// one.
func (a *API) LogoutAllHandler(c echo.Context) error {
	identity := middleware.MustIdentity(c)
	count, err := a.sessions.LogoutAll(c.Request().Context(), identity.UserUUID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"detail": "Logged out", "revoked": count})
}
