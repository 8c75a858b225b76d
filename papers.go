package reviewengine

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/reviewengine/content"
)

func (a *App) handleListPapers(c echo.Context) error {
	page, limit, err := paging(c)
	if err != nil {
		return err
	}
	q := content.PaperQuery{
		Page:   page,
		Limit:  limit,
		UserID: c.QueryParam("userId"),
		Query:  c.QueryParam("query"),
		Sort:   c.QueryParam("sort"),
	}
	result, err := a.Store.Papers.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	// A search with no match at all is a 404; a page past the matches is not.
	if strings.TrimSpace(q.Query) != "" && result.Total == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "No papers found matching the query")
	}
	return c.JSON(http.StatusOK, result)
}

// handleGetPaper counts a view when Redis is configured and reports the
// stored total plus the views still waiting to be synced.
func (a *App) handleGetPaper(c echo.Context) error {
	ctx := c.Request().Context()
	p, ok, err := a.Store.Papers.FindByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Paper not found")
	}
	if a.Views != nil {
		pending, err := a.Views.Hit(ctx, p.ID)
		if err != nil {
			c.Logger().Warnf("count view of %s: %v", p.ID, err)
		} else {
			p.Views += pending
		}
	}
	return c.JSON(http.StatusOK, p)
}

func (a *App) handleCreatePaper(c echo.Context) error {
	var p content.ResearchPaper
	if err := bindJSON(c, &p); err != nil {
		return err
	}
	if p.UserID == "" {
		me, _ := CurrentUser(c)
		p.UserID = me.ID
	}
	p.Keywords = FilterEmpty(p.Keywords)
	p.Citations = FilterEmpty(p.Citations)
	if err := a.Store.Papers.Create(c.Request().Context(), &p); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (a *App) handleUpdatePaper(c echo.Context) error {
	var patch content.ResearchPaperUpdate
	if err := bindJSON(c, &patch); err != nil {
		return err
	}
	p, err := a.Store.Papers.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (a *App) handleDeletePaper(c echo.Context) error {
	if _, err := a.Store.Papers.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return deleted(c, "Paper")
}
