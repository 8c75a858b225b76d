package reviewengine

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/eringen/reviewengine/content"
)

const (
	userContextKey  = "user"
	sessionTokenKey = "token"
)

var errBadToken = errors.New("invalid or expired token")

// issueToken signs an HS256 token whose subject is userID.
func (a *App) issueToken(userID string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.Config.TokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.Config.TokenSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// parseToken verifies raw and returns the user id it was issued for.
func (a *App) parseToken(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(a.Config.TokenSecret), nil
	}, jwt.WithExpirationRequired(), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", errBadToken
	}
	if claims.Subject == "" {
		return "", errBadToken
	}
	return claims.Subject, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// requestToken finds the caller's token: the Authorization header first,
// then the session cookie.
func requestToken(c echo.Context) string {
	if t := bearerToken(c.Request()); t != "" {
		return t
	}
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	t, _ := sess.Values[sessionTokenKey].(string)
	return t
}

// requireAuth rejects requests without a valid token whose user still
// exists, and stores that user in the context.
func (a *App) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := requestToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
		}
		id, err := a.parseToken(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}
		u, ok, err := a.Store.Users.FindByID(c.Request().Context(), id)
		if err != nil {
			return err
		}
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}
		c.Set(userContextKey, u)
		return next(c)
	}
}

// CurrentUser returns the authenticated user set by requireAuth.
func CurrentUser(c echo.Context) (content.User, bool) {
	u, ok := c.Get(userContextKey).(content.User)
	return u, ok
}

// optionalUser resolves the caller on routes that do not require auth.
// Any token problem is treated as anonymous.
func (a *App) optionalUser(c echo.Context) (content.User, bool) {
	if u, ok := CurrentUser(c); ok {
		return u, true
	}
	raw := requestToken(c)
	if raw == "" {
		return content.User{}, false
	}
	id, err := a.parseToken(raw)
	if err != nil {
		return content.User{}, false
	}
	u, ok, err := a.Store.Users.FindByID(c.Request().Context(), id)
	if err != nil || !ok {
		return content.User{}, false
	}
	return u, true
}

func setSessionToken(c echo.Context, token string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[sessionTokenKey] = token
	return sess.Save(c.Request(), c.Response())
}

func clearSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

type authResponse struct {
	Message string             `json:"message"`
	User    content.PublicUser `json:"user"`
	Token   string             `json:"token"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *App) handleRegister(c echo.Context) error {
	var u content.User
	if err := bindJSON(c, &u); err != nil {
		return err
	}
	if err := a.Store.Users.Create(c.Request().Context(), &u); err != nil {
		return err
	}
	token, err := a.issueToken(u.ID, time.Now())
	if err != nil {
		return err
	}
	if err := setSessionToken(c, token); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{
		Message: "User registered successfully",
		User:    u.Public(),
		Token:   token,
	})
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		c.Response().Header().Set("Retry-After", fmt.Sprintf("%.0f", a.loginLimiter.RetryAfter(ip).Seconds()))
		return c.JSON(http.StatusTooManyRequests, errorBody{Error: "Too many login attempts. Try again later."})
	}
	var cred credentials
	if err := bindJSON(c, &cred); err != nil {
		return err
	}
	if strings.TrimSpace(cred.Email) == "" || cred.Password == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Email and password are required"})
	}
	u, err := a.Store.Users.Authenticate(c.Request().Context(), cred.Email, cred.Password)
	if errors.Is(err, content.ErrInvalidCredentials) {
		a.loginLimiter.Record(ip)
		return c.JSON(http.StatusUnauthorized, errorBody{Error: "Invalid email or password"})
	}
	if err != nil {
		return err
	}
	a.loginLimiter.Reset(ip)

	token, err := a.issueToken(u.ID, time.Now())
	if err != nil {
		return err
	}
	if err := setSessionToken(c, token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{
		Message: "Login successful",
		User:    u.Public(),
		Token:   token,
	})
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearSession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageBody{Message: "Logged out"})
}

func (a *App) handleMe(c echo.Context) error {
	u, _ := CurrentUser(c)
	return c.JSON(http.StatusOK, map[string]any{
		"user":      u.Public(),
		"csrfToken": CsrfToken(c),
	})
}
