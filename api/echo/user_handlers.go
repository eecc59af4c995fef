package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"go.pilab.hu/coursehub/domain"
	"go.pilab.hu/coursehub/middleware"
	"go.pilab.hu/coursehub/services"
)

type createAdminRequest struct {
	EmailID           string `json:"email_id"`
	Password          string `json:"password"`
	CollegeName       string `json:"college_name"`
	StudentAllowCount int    `json:"total_student_allow_count"`
}

func (a *API) CreateAdminHandler(c echo.Context) error {
	var req createAdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.EmailID == "" || req.Password == "" || req.CollegeName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email_id, password and college_name are required")
	}

	user, err := a.users.Create(c.Request().Context(), domain.RoleAdmin, services.CreateInput{
		Email:             req.EmailID,
		Password:          req.Password,
		CollegeName:       req.CollegeName,
		StudentAllowCount: req.StudentAllowCount,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (a *API) ListAdminsHandler(c echo.Context) error {
	users, err := a.users.List(c.Request().Context(), domain.RoleAdmin)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (a *API) GetAdminHandler(c echo.Context) error {
	user, err := a.users.Get(c.Request().Context(), domain.RoleAdmin, c.Param("uuid_id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

type createStudentRequest struct {
	EmailID       string `json:"email_id"`
	Password      string `json:"password"`
	StudentName   string `json:"student_name"`
	Department    string `json:"department"`
	SubDepartment string `json:"sub_department"`
}

// CreateStudentHandler registers a student under the calling admin. The
// student is auto-enrolled into their department's auto_assign courses.
func (a *API) CreateStudentHandler(c echo.Context) error {
	identity := middleware.MustIdentity(c)

	var req createStudentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.EmailID == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email_id and password are required")
	}
	if req.StudentName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "student_name is required")
	}
	if req.Department == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "department is required")
	}

	user, err := a.users.Create(c.Request().Context(), domain.RoleStudent, services.CreateInput{
		Email:         req.EmailID,
		Password:      req.Password,
		Name:          req.StudentName,
		Department:    req.Department,
		SubDepartment: req.SubDepartment,
		AdminUUID:     identity.UserUUID,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (a *API) ListStudentsHandler(c echo.Context) error {
	users, err := a.users.List(c.Request().Context(), domain.RoleStudent)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (a *API) GetStudentHandler(c echo.Context) error {
	user, err := a.users.Get(c.Request().Context(), domain.RoleStudent, c.Param("uuid_id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

type updateStudentRequest struct {
	EmailID       *string `json:"email_id"`
	Password      *string `json:"password"`
	StudentName   *string `json:"student_name"`
	Department    *string `json:"department"`
	SubDepartment *string `json:"sub_department"`
}

func (a *API) UpdateStudentHandler(c echo.Context) error {
	var req updateStudentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := a.users.Update(c.Request().Context(), domain.RoleStudent, c.Param("uuid_id"), services.UpdateInput{
		Email:         req.EmailID,
		Password:      req.Password,
		Name:          req.StudentName,
		Department:    req.Department,
		SubDepartment: req.SubDepartment,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (a *API) DeleteStudentHandler(c echo.Context) error {
	if err := a.users.Delete(c.Request().Context(), domain.RoleStudent, c.Param("uuid_id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type createTeacherRequest struct {
	EmailID  string `json:"email_id"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Bio      string `json:"bio"`
}

func (a *API) CreateTeacherHandler(c echo.Context) error {
	var req createTeacherRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.EmailID == "" || req.Password == "" || req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email_id, password and name are required")
	}

	user, err := a.users.Create(c.Request().Context(), domain.RoleTeacher, services.CreateInput{
		Email:    req.EmailID,
		Password: req.Password,
		Name:     req.Name,
		Bio:      req.Bio,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (a *API) ListTeachersHandler(c echo.Context) error {
	users, err := a.users.List(c.Request().Context(), domain.RoleTeacher)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (a *API) GetTeacherHandler(c echo.Context) error {
	user, err := a.users.Get(c.Request().Context(), domain.RoleTeacher, c.Param("uuid_id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

type updateTeacherRequest struct {
	EmailID  *string `json:"email_id"`
	Password *string `json:"password"`
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
}

func (a *API) UpdateTeacherHandler(c echo.Context) error {
	var req updateTeacherRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := a.users.Update(c.Request().Context(), domain.RoleTeacher, c.Param("uuid_id"), services.UpdateInput{
		Email:    req.EmailID,
		Password: req.Password,
		Name:     req.Name,
		Bio:      req.Bio,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (a *API) DeleteTeacherHandler(c echo.Context) error {
	if err := a.users.Delete(c.Request().Context(), domain.RoleTeacher, c.Param("uuid_id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MyCoursesHandler returns the calling student's enrolled courses.
func (a *API) MyCoursesHandler(c echo.Context) error {
	identity := middleware.MustIdentity(c)
	courses, err := a.enrollment.ListForStudent(c.Request().Context(), identity.UserUUID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"courses": courses})
}
