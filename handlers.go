package site

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pulsodigital/site/content"
)

// handleRobots generates robots.txt dynamically using SITE_URL.
func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}

// handleListPosts returns published posts, optionally filtered by category
// or limited to featured ones.
func (a *App) handleListPosts(c echo.Context) error {
	category := c.QueryParam("category")
	featuredOnly := c.QueryParam("featured") == "true"
	var out []content.Post
	for _, p := range a.Posts.List() {
		if p.Status != content.StatusPublished {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		if featuredOnly && !p.Featured {
			continue
		}
		out = append(out, p)
	}
	if out == nil {
		out = []content.Post{}
	}
	return c.JSON(http.StatusOK, out)
}

func (a *App) handleGetPost(c echo.Context) error {
	post, ok := a.Posts.Get(c.Param("id"))
	if !ok || post.Status != content.StatusPublished {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "post not found"})
	}
	return c.JSON(http.StatusOK, post)
}

// handleListCases returns published case studies, optionally only the
// featured ones.
func (a *App) handleListCases(c echo.Context) error {
	featuredOnly := c.QueryParam("featured") == "true"
	var out []content.Case
	for _, cs := range a.Cases.List() {
		if cs.Status != content.StatusPublished {
			continue
		}
		if featuredOnly && !cs.Featured {
			continue
		}
		out = append(out, cs)
	}
	if out == nil {
		out = []content.Case{}
	}
	return c.JSON(http.StatusOK, out)
}

func (a *App) handleGetCase(c echo.Context) error {
	slug := c.Param("slug")
	cs, ok := a.Cases.Find(func(cs content.Case) bool { return cs.Slug == slug })
	if !ok || cs.Status != content.StatusPublished {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "case not found"})
	}
	return c.JSON(http.StatusOK, cs)
}
