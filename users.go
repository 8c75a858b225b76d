package reviewengine

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/reviewengine/content"
)

func (a *App) handleListUsers(c echo.Context) error {
	users, err := a.Store.Users.All(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, content.PublicUsers(users))
}

func (a *App) handleGetUser(c echo.Context) error {
	u, ok, err := a.Store.Users.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, u.Public())
}

func (a *App) handleCreateUser(c echo.Context) error {
	var u content.User
	if err := bindJSON(c, &u); err != nil {
		return err
	}
	if err := a.Store.Users.Create(c.Request().Context(), &u); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, u.Public())
}

func (a *App) handleUpdateUser(c echo.Context) error {
	var patch content.UserUpdate
	if err := bindJSON(c, &patch); err != nil {
		return err
	}
	u, err := a.Store.Users.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u.Public())
}

func (a *App) handleDeleteUser(c echo.Context) error {
	if _, err := a.Store.Users.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return deleted(c, "User")
}
