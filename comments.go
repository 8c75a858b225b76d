package reviewengine

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/reviewengine/content"
)

func (a *App) handleListComments(c echo.Context) error {
	comments, err := a.Store.Comments.All(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

func (a *App) handleGetComment(c echo.Context) error {
	cm, ok, err := a.Store.Comments.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}
	return c.JSON(http.StatusOK, cm)
}

// handleCommentsByPost lists a post's comments flat, or nested under their
// parents with threaded=1.
func (a *App) handleCommentsByPost(c echo.Context) error {
	comments, err := a.Store.Comments.FindByPostID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if c.QueryParam("threaded") == "1" {
		return c.JSON(http.StatusOK, content.ThreadComments(comments))
	}
	return c.JSON(http.StatusOK, comments)
}

func (a *App) handleCreateComment(c echo.Context) error {
	var cm content.Comment
	if err := bindJSON(c, &cm); err != nil {
		return err
	}
	if cm.UserID == "" {
		me, _ := CurrentUser(c)
		cm.UserID = me.ID
	}
	if err := a.Store.Comments.Create(c.Request().Context(), &cm); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cm)
}

func (a *App) handleUpdateComment(c echo.Context) error {
	var patch content.CommentUpdate
	if err := bindJSON(c, &patch); err != nil {
		return err
	}
	cm, err := a.Store.Comments.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cm)
}

func (a *App) handleDeleteComment(c echo.Context) error {
	if _, err := a.Store.Comments.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return deleted(c, "Comment")
}
