package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// GetDashboard reports circulation and catalog aggregates.
//
//	@Summary	Analytics dashboard
//	@Tags		analytics
//	@Success	200	{object}	model.DashboardReport
//	@Router		/analytics/dashboard [get]
func (h *Handler) GetDashboard(c echo.Context) error {
	report, err := h.analyticsSvc.Dashboard(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) GetActivity(c echo.Context) error {
	var limit int
	if v := c.QueryParam("limit"); v != "" {
		var err error
		if limit, err = strconv.Atoi(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit is invalid")
		}
	}

	events, err := h.analyticsSvc.Activity(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, events)
}
