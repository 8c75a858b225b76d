package reviewengine

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/reviewengine/content"
)

func (a *App) handleListCategories(c echo.Context) error {
	cats, err := a.Store.Categories.All(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cats)
}

func (a *App) handleGetCategory(c echo.Context) error {
	cat, ok, err := a.Store.Categories.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	}
	return c.JSON(http.StatusOK, cat)
}

func (a *App) handleGetCategoryBySlug(c echo.Context) error {
	cats, err := a.Store.Categories.FindBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	}
	return c.JSON(http.StatusOK, cats[0])
}

func (a *App) handleCreateCategory(c echo.Context) error {
	var cat content.Category
	if err := bindJSON(c, &cat); err != nil {
		return err
	}
	if err := a.Store.Categories.Create(c.Request().Context(), &cat); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cat)
}

func (a *App) handleUpdateCategory(c echo.Context) error {
	var patch content.CategoryUpdate
	if err := bindJSON(c, &patch); err != nil {
		return err
	}
	cat, err := a.Store.Categories.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cat)
}

func (a *App) handleDeleteCategory(c echo.Context) error {
	if _, err := a.Store.Categories.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return deleted(c, "Category")
}

func (a *App) handleListTags(c echo.Context) error {
	tags, err := a.Store.Tags.All(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

func (a *App) handleGetTag(c echo.Context) error {
	tag, ok, err := a.Store.Tags.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Tag not found")
	}
	return c.JSON(http.StatusOK, tag)
}

func (a *App) handleGetTagBySlug(c echo.Context) error {
	tags, err := a.Store.Tags.FindBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Tag not found")
	}
	return c.JSON(http.StatusOK, tags[0])
}

func (a *App) handleCreateTag(c echo.Context) error {
	var tag content.Tag
	if err := bindJSON(c, &tag); err != nil {
		return err
	}
	if err := a.Store.Tags.Create(c.Request().Context(), &tag); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tag)
}

func (a *App) handleUpdateTag(c echo.Context) error {
	var patch content.TagUpdate
	if err := bindJSON(c, &patch); err != nil {
		return err
	}
	tag, err := a.Store.Tags.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tag)
}

func (a *App) handleDeleteTag(c echo.Context) error {
	if _, err := a.Store.Tags.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return deleted(c, "Tag")
}
