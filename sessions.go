package site

import (
	"net/http"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/pulsodigital/site/content"
)

const sessionName = "admin_session"

// isAdmin reports whether the request carries an authenticated admin session.
func isAdmin(c echo.Context) bool {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return false
	}
	auth, ok := sess.Values["authenticated"].(bool)
	return ok && auth
}

func setAdminSession(c echo.Context, email string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values["authenticated"] = true
	sess.Values["email"] = email
	return sess.Save(c.Request(), c.Response())
}

func clearAdminSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	// Expiring the cookie is not enough: a replayed copy would still decode
	// as authenticated, so the values go too.
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// adminSession builds the store-facing session from the cookie session, or
// nil when unauthenticated.
func adminSession(c echo.Context) *content.Session {
	if !isAdmin(c) {
		return nil
	}
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return nil
	}
	email, _ := sess.Values["email"].(string)
	return &content.Session{UserID: "admin", Email: email}
}

// requireAdmin rejects unauthenticated requests to the admin API.
func (a *App) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !isAdmin(c) {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": content.ErrAuthRequired.Error(),
			})
		}
		return next(c)
	}
}

// withStoreSession injects the admin session into the request context so the
// repositories' session gate sees it.
func (a *App) withStoreSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if sess := adminSession(c); sess != nil {
			ctx := content.WithSession(c.Request().Context(), sess)
			c.SetRequest(c.Request().WithContext(ctx))
		}
		return next(c)
	}
}
