// Package echo exposes the course-management HTTP API.
package echo

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"go.pilab.hu/coursehub/domain"
	"go.pilab.hu/coursehub/middleware"
	"go.pilab.hu/coursehub/services"
	"go.pilab.hu/coursehub/session"
	"go.pilab.hu/coursehub/token"
)

// API holds the handler dependencies.
type API struct {
	auth        *services.AuthService
	users       *services.UserService
	enrollment  *services.EnrollmentService
	deviceReset *services.DeviceResetService
	sessions    *session.Manager
	tokens      *token.Manager
	courses     domain.CourseRepository
	departments domain.DepartmentRepository
	userRepo    domain.UserRepository
	enrollments domain.EnrollmentRepository
	pingStore   func(ctx context.Context) error
	metricsReg  *prometheus.Registry
}

// Deps bundles the API constructor arguments.
type Deps struct {
	Auth        *services.AuthService
	Users       *services.UserService
	Enrollment  *services.EnrollmentService
	DeviceReset *services.DeviceResetService
	Sessions    *session.Manager
	Tokens      *token.Manager
	Courses     domain.CourseRepository
	Departments domain.DepartmentRepository
	UserRepo    domain.UserRepository
	Enrollments domain.EnrollmentRepository
	// PingStore backs the health endpoint; nil means always healthy.
	PingStore  func(ctx context.Context) error
	MetricsReg *prometheus.Registry
}

// NewAPI creates the API.
func NewAPI(deps Deps) *API {
	return &API{
		auth:        deps.Auth,
		users:       deps.Users,
		enrollment:  deps.Enrollment,
		deviceReset: deps.DeviceReset,
		sessions:    deps.Sessions,
		tokens:      deps.Tokens,
		courses:     deps.Courses,
		departments: deps.Departments,
		userRepo:    deps.UserRepo,
		enrollments: deps.Enrollments,
		pingStore:   deps.PingStore,
		metricsReg:  deps.MetricsReg,
	}
}

// RegisterRoutes wires every route onto e.
func (a *API) RegisterRoutes(e *echo.Echo) {
	e.Use(echomw.Recover())
	e.Use(requestLogger())

	e.GET("/healthz", a.HealthHandler)
	if a.metricsReg != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(a.metricsReg, promhttp.HandlerOpts{})))
	}

	authn := middleware.Authn(a.sessions, a.tokens)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)
	adminOrTeacher := middleware.RequireRole(domain.RoleAdmin, domain.RoleTeacher)
	studentOnly := middleware.RequireRole(domain.RoleStudent)

	// Authentication and session management.
	auth := e.Group("/auth")
	auth.POST("/login", a.LoginHandler)
	auth.GET("/me", a.MeHandler, authn)
	auth.GET("/sessions", a.ListSessionsHandler, authn)
	auth.POST("/logout", a.LogoutHandler, authn)
	auth.POST("/logout-all", a.LogoutAllHandler, authn)

	// Operator session management.
	sessions := e.Group("/sessions", authn, adminOnly)
	sessions.GET("/users/:user_uuid", a.ListUserSessionsHandler)
	sessions.POST("/:session_id/revoke", a.RevokeSessionHandler)
	sessions.POST("/users/:user_uuid/revoke-all", a.RevokeUserSessionsHandler)

	// Device reset workflow.
	devices := e.Group("/devices", authn)
	devices.POST("/reset-request", a.RequestDeviceResetHandler, studentOnly)
	devices.GET("/reset-requests", a.ListDeviceResetsHandler, adminOnly)
	devices.POST("/reset-requests/:request_id/approve", a.ApproveDeviceResetHandler, adminOnly)
	devices.POST("/reset-requests/:request_id/reject", a.RejectDeviceResetHandler, adminOnly)

	// Account management.
	admins := e.Group("/admins")
	admins.POST("", a.CreateAdminHandler) // Bootstrap; relies on unique email.
	admins.GET("", a.ListAdminsHandler, authn, adminOnly)
	admins.GET("/:uuid_id", a.GetAdminHandler, authn, adminOnly)

	students := e.Group("/students", authn)
	students.POST("", a.CreateStudentHandler, adminOnly)
	students.GET("", a.ListStudentsHandler, adminOrTeacher)
	students.GET("/me/courses", a.MyCoursesHandler, studentOnly)
	students.GET("/:uuid_id", a.GetStudentHandler, adminOrTeacher)
	students.PUT("/:uuid_id", a.UpdateStudentHandler, adminOnly)
	students.DELETE("/:uuid_id", a.DeleteStudentHandler, adminOnly)

	teachers := e.Group("/teachers", authn)
	teachers.POST("", a.CreateTeacherHandler, adminOnly)
	teachers.GET("", a.ListTeachersHandler)
	teachers.GET("/:uuid_id", a.GetTeacherHandler)
	teachers.PUT("/:uuid_id", a.UpdateTeacherHandler, adminOnly)
	teachers.DELETE("/:uuid_id", a.DeleteTeacherHandler, adminOnly)

	// Courses and enrollment.
	courses := e.Group("/courses", authn)
	courses.POST("", a.CreateCourseHandler, adminOrTeacher)
	courses.GET("", a.ListCoursesHandler)
	courses.GET("/:uuid_id", a.GetCourseHandler)
	courses.PUT("/:uuid_id", a.UpdateCourseHandler, adminOrTeacher)
	courses.DELETE("/:uuid_id", a.DeleteCourseHandler, adminOnly)
	courses.POST("/:uuid_id/assign/:student_uuid", a.AssignCourseHandler, adminOrTeacher)

	departments := e.Group("/departments", authn, adminOnly)
	departments.POST("", a.CreateDepartmentHandler)
	departments.GET("", a.ListDepartmentsHandler)
	departments.GET("/:uuid_id", a.GetDepartmentHandler)
	departments.PUT("/:uuid_id", a.UpdateDepartmentHandler)
	departments.DELETE("/:uuid_id", a.DeleteDepartmentHandler)
}

// requestLogger logs one line per request through the global zerolog logger.
func requestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

// httpError maps domain errors to HTTP status codes. Unknown errors become
// 500 and are logged; transient store failures map to 503 so clients retry.
func httpError(err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrCourseNotFound),
		errors.Is(err, domain.ErrDepartmentNotFound),
		errors.Is(err, domain.ErrResetRequestNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrDepartmentExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrDepartmentInUse),
		errors.Is(err, domain.ErrResetRequestResolved):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable, retry")
	default:
		log.Error().Err(err).Msg("unhandled error in HTTP handler")
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

// HealthHandler reports liveness and, when a store ping is configured, store
// reachability.
func (a *API) HealthHandler(c echo.Context) error {
	if a.pingStore != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := a.pingStore(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}
