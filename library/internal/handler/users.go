package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bibliotek/circulation/library/internal/errs"
	"github.com/bibliotek/circulation/library/internal/model"
)

func (h *Handler) RegisterUser(c echo.Context) error {
	var req model.RegisterUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userSvc.Register(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, errs.ErrDuplicateUser) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *Handler) GetUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is invalid")
	}

	user, err := h.userSvc.Get(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) GetUsers(c echo.Context) error {
	users, err := h.userSvc.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, users)
}
