package echo

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"go.pilab.hu/coursehub/domain"
	"go.pilab.hu/coursehub/middleware"
)

type courseRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TeacherUUID string   `json:"teacher_uuid"`
	Departments []string `json:"departments"`
	AutoAssign  bool     `json:"auto_assign"`
}

func (a *API) CreateCourseHandler(c echo.Context) error {
	var req courseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if req.TeacherUUID != "" {
		if _, err := a.userRepo.Get(c.Request().Context(), domain.RoleTeacher, req.TeacherUUID); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Instructor not found")
		}
	}

	now := time.Now().UTC()
	course := &domain.Course{
		UUID:        uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		TeacherUUID: req.TeacherUUID,
		Departments: req.Departments,
		AutoAssign:  req.AutoAssign,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.courses.Create(c.Request().Context(), course); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, course)
}

func (a *API) ListCoursesHandler(c echo.Context) error {
	courses, err := a.courses.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, courses)
}

func (a *API) GetCourseHandler(c echo.Context) error {
	course, err := a.courses.Get(c.Request().Context(), c.Param("uuid_id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, course)
}

func (a *API) UpdateCourseHandler(c echo.Context) error {
	course, err := a.courses.Get(c.Request().Context(), c.Param("uuid_id"))
	if err != nil {
		return httpError(err)
	}

	var req courseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Title != "" {
		course.Title = req.Title
	}
	if req.Description != "" {
		course.Description = req.Description
	}
	if req.TeacherUUID != "" {
		if _, err := a.userRepo.Get(c.Request().Context(), domain.RoleTeacher, req.TeacherUUID); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Instructor not found")
		}
		course.TeacherUUID = req.TeacherUUID
	}
	if req.Departments != nil {
		course.Departments = req.Departments
	}
	course.AutoAssign = req.AutoAssign
	course.UpdatedAt = time.Now().UTC()

	if err := a.courses.Update(c.Request().Context(), course); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, course)
}

// DeleteCourseHandler removes the course and its enrollments.
func (a *API) DeleteCourseHandler(c echo.Context) error {
	ctx := c.Request().Context()
	if err := a.courses.Delete(ctx, c.Param("uuid_id")); err != nil {
		return httpError(err)
	}
	if _, err := a.enrollments.DeleteByCourse(ctx, c.Param("uuid_id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AssignCourseHandler manually enrolls a student into a course.
func (a *API) AssignCourseHandler(c echo.Context) error {
	identity := middleware.MustIdentity(c)
	ctx := c.Request().Context()

	if _, err := a.userRepo.Get(ctx, domain.RoleStudent, c.Param("student_uuid")); err != nil {
		return httpError(err)
	}
	enrollment, err := a.enrollment.Assign(ctx, c.Param("student_uuid"), c.Param("uuid_id"), identity)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, enrollment)
}
