package reviewengine

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eringen/reviewengine/content"
)

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

// statusFor maps a content error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, content.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, content.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, content.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, content.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// httpErrorHandler renders every error as {"error": message}. Content
// errors map by kind; anything unrecognised becomes a logged 500 whose
// detail stays on the server.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := statusFor(err)
	msg := "Internal server error"
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		msg = http.StatusText(code)
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	case errors.Is(err, content.ErrInvalidCredentials):
		msg = "Invalid email or password"
	case code < 500:
		msg = content.Message(err)
	}
	if code >= 500 {
		msg = "Internal server error"
		c.Logger().Errorf("server error: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorBody{Error: msg})
	}
	if err != nil {
		c.Logger().Errorf("write error response: %v", err)
	}
}

// bindJSON decodes the request body into v, reporting malformed JSON as a
// 400.
func bindJSON(c echo.Context, v any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON body")
	}
	return nil
}

// queryInt reads an integer query parameter, returning def when absent.
func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return n, nil
}

// paging reads page and limit with their defaults.
func paging(c echo.Context) (page, limit int, err error) {
	if page, err = queryInt(c, "page", content.DefaultPage); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(c, "limit", content.DefaultLimit); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func deleted(c echo.Context, entity string) error {
	return c.JSON(http.StatusOK, messageBody{Message: entity + " successfully deleted"})
}

func (a *App) handleHealth(c echo.Context) error {
	if err := a.Store.Ping(c.Request().Context()); err != nil {
		c.Logger().Errorf("health: %v", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"store":  a.Store.Driver(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"store":  a.Store.Driver(),
	})
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.Latest(c.Request().Context(), feedSize)
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Cache.Posts(ctx)
	if err != nil {
		return err
	}
	papers, err := a.Store.Papers.All(ctx)
	if err != nil {
		return err
	}
	comments, err := a.Store.Comments.All(ctx)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts, papers, comments)
}
