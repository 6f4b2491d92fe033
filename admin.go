package site

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/pulsodigital/site/content"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{
			"error": "Too many login attempts. Try again later.",
		})
	}
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.Email != a.Config.AdminEmail ||
		bcrypt.CompareHashAndPassword([]byte(a.Config.AdminPasswordHash), []byte(req.Password)) != nil {
		a.loginLimiter.Record(ip)
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
	}
	if err := setAdminSession(c, req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"csrfToken": csrfToken(c)})
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// handleSession reports whether the caller is logged in and hands out the
// CSRF token admin mutations must echo back.
func (a *App) handleSession(c echo.Context) error {
	sess := adminSession(c)
	return c.JSON(http.StatusOK, map[string]any{
		"authenticated": sess != nil,
		"email": func() string {
			if sess != nil {
				return sess.Email
			}
			return ""
		}(),
		"csrfToken": csrfToken(c),
	})
}

func (a *App) handleAdminListPosts(c echo.Context) error {
	return c.JSON(http.StatusOK, a.Posts.List())
}

func (a *App) handleCreatePost(c echo.Context) error {
	var post content.Post
	if err := c.Bind(&post); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	post.ID = ""
	created, err := a.Posts.Create(c.Request().Context(), post)
	if err != nil {
		return writeContentError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (a *App) handleUpdatePost(c echo.Context) error {
	var post content.Post
	if err := c.Bind(&post); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	post.ID = c.Param("id")
	updated, err := a.Posts.Update(c.Request().Context(), post)
	if err != nil {
		return writeContentError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handleDeletePost(c echo.Context) error {
	if err := a.Posts.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeContentError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleTogglePost(c echo.Context) error {
	updated, err := a.Posts.ToggleStatus(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeContentError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handleAdminListCases(c echo.Context) error {
	return c.JSON(http.StatusOK, a.Cases.List())
}

// handleSaveCase saves a case study through the upsert path: new cases get an
// id from the store, existing ones are replaced, and the collection is
// refreshed afterwards.
func (a *App) handleSaveCase(c echo.Context) error {
	var cs content.Case
	if err := c.Bind(&cs); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := a.Cases.Save(c.Request().Context(), cs); err != nil {
		return writeContentError(c, err)
	}
	return c.JSON(http.StatusOK, a.Cases.List())
}

func (a *App) handleDeleteCase(c echo.Context) error {
	if err := a.Cases.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeContentError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleToggleCase(c echo.Context) error {
	updated, err := a.Cases.ToggleStatus(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeContentError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// handleStats returns the dashboard counts for both content kinds.
func (a *App) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]content.Stats{
		"posts": a.Posts.Stats(),
		"cases": a.Cases.Stats(),
	})
}

// writeContentError translates the repository's error taxonomy into HTTP
// responses: validation problems are itemized, auth problems get the exact
// message the UI shows, everything else is a persistence failure.
func writeContentError(c echo.Context, err error) error {
	var verr *content.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"isValid": false,
			"errors":  verr.Messages,
		})
	}
	switch {
	case errors.Is(err, content.ErrAuthRequired):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, content.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, content.ErrMissingID):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	var serr *content.StoreError
	if errors.As(err, &serr) && serr.Code == content.CodeNotFound {
		return c.JSON(http.StatusNotFound, map[string]string{"error": serr.Message})
	}
	c.Logger().Errorf("content error: %v", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "An error occurred while saving. Please try again.",
	})
}
