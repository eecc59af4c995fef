package echo

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"go.pilab.hu/coursehub/domain"
)

type departmentRequest struct {
	Name           string   `json:"name"`
	SubDepartments []string `json:"sub_departments"`
}

func (a *API) CreateDepartmentHandler(c echo.Context) error {
	var req departmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	now := time.Now().UTC()
	dept := &domain.Department{
		UUID:           uuid.NewString(),
		Name:           req.Name,
		SubDepartments: req.SubDepartments,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := a.departments.Create(c.Request().Context(), dept); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dept)
}

func (a *API) ListDepartmentsHandler(c echo.Context) error {
	depts, err := a.departments.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, depts)
}

func (a *API) GetDepartmentHandler(c echo.Context) error {
	dept, err := a.departments.Get(c.Request().Context(), c.Param("uuid_id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dept)
}

func (a *API) UpdateDepartmentHandler(c echo.Context) error {
	dept, err := a.departments.Get(c.Request().Context(), c.Param("uuid_id"))
	if err != nil {
		return httpError(err)
	}

	var req departmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name != "" {
		dept.Name = req.Name
	}
	if req.SubDepartments != nil {
		dept.SubDepartments = req.SubDepartments
	}
	dept.UpdatedAt = time.Now().UTC()

	if err := a.departments.Update(c.Request().Context(), dept); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dept)
}

// DeleteDepartmentHandler refuses to delete a department that still has
// enrolled students.
func (a *API) DeleteDepartmentHandler(c echo.Context) error {
	ctx := c.Request().Context()
	dept, err := a.departments.Get(ctx, c.Param("uuid_id"))
	if err != nil {
		return httpError(err)
	}

	count, err := a.userRepo.CountStudentsByDepartment(ctx, dept.Name)
	if err != nil {
		return httpError(err)
	}
	if count > 0 {
		return httpError(domain.ErrDepartmentInUse)
	}

	if err := a.departments.Delete(ctx, dept.UUID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
