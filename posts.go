package reviewengine

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/reviewengine/content"
)

// expand reports whether the caller asked for resolved references.
func expand(c echo.Context) bool {
	switch c.QueryParam("expand") {
	case "1", "true", "yes":
		return true
	}
	return false
}

func (a *App) handleListPosts(c echo.Context) error {
	ctx := c.Request().Context()
	page, limit, err := paging(c)
	if err != nil {
		return err
	}
	q := content.PostQuery{
		Page:       page,
		Limit:      limit,
		CategoryID: c.QueryParam("categoryId"),
		TagID:      c.QueryParam("tagId"),
		UserID:     c.QueryParam("userId"),
		Query:      c.QueryParam("query"),
		Sort:       c.QueryParam("sort"),
	}
	// Authors see their own drafts.
	if q.UserID != "" {
		if me, ok := a.optionalUser(c); ok && me.ID == q.UserID {
			q.IncludeDrafts = true
		}
	}

	result, err := a.Store.Posts.List(ctx, q)
	if err != nil {
		return err
	}
	if !expand(c) {
		return c.JSON(http.StatusOK, result)
	}
	views, err := a.Store.AssemblePosts(ctx, result.Items)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, content.Page[content.PostView]{
		Items:      views,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

func (a *App) handleGetPost(c echo.Context) error {
	ctx := c.Request().Context()
	p, ok, err := a.Store.Posts.FindByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	if !expand(c) {
		return c.JSON(http.StatusOK, p)
	}
	view, err := a.Store.AssemblePost(ctx, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (a *App) handleCreatePost(c echo.Context) error {
	var p content.BlogPost
	if err := bindJSON(c, &p); err != nil {
		return err
	}
	if p.UserID == "" {
		me, _ := CurrentUser(c)
		p.UserID = me.ID
	}
	p.CategoryIDs = FilterEmpty(p.CategoryIDs)
	p.TagIDs = FilterEmpty(p.TagIDs)
	if err := a.Store.Posts.Create(c.Request().Context(), &p); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (a *App) handleUpdatePost(c echo.Context) error {
	var patch content.BlogPostUpdate
	if err := bindJSON(c, &patch); err != nil {
		return err
	}
	p, err := a.Store.Posts.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (a *App) handleDeletePost(c echo.Context) error {
	if _, err := a.Store.Posts.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return deleted(c, "Post")
}
