package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"go.pilab.hu/coursehub/middleware"
)

type resetRequestBody struct {
	Reason string `json:"reason"`
}

// RequestDeviceResetHandler files a device reset request for the calling
// student. An existing pending request is returned instead of a duplicate.
func (a *API) RequestDeviceResetHandler(c echo.Context) error {
	identity := middleware.MustIdentity(c)

	var body resetRequestBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(body.Reason) > 500 {
		return echo.NewHTTPError(http.StatusBadRequest, "reason too long")
	}

	req, err := a.deviceReset.Request(c.Request().Context(), identity.UserUUID, body.Reason)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, req)
}

// ListDeviceResetsHandler lists reset requests for admins, optionally
// filtered with ?status_filter=pending|approved|rejected.
func (a *API) ListDeviceResetsHandler(c echo.Context) error {
	reqs, err := a.deviceReset.List(c.Request().Context(), c.QueryParam("status_filter"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, reqs)
}

// ApproveDeviceResetHandler approves a pending request and revokes all of the
// student's sessions.
func (a *API) ApproveDeviceResetHandler(c echo.Context) error {
	identity := middleware.MustIdentity(c)
	req, err := a.deviceReset.Approve(c.Request().Context(), c.Param("request_id"), identity)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, req)
}

// RejectDeviceResetHandler rejects a pending request without touching
// sessions.
func (a *API) RejectDeviceResetHandler(c echo.Context) error {
	identity := middleware.MustIdentity(c)
	req, err := a.deviceReset.Reject(c.Request().Context(), c.Param("request_id"), identity)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, req)
}
