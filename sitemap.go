package site

import (
	"encoding/xml"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pulsodigital/site/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// handleSitemap lists the home page plus every published post and case study.
func (a *App) handleSitemap(c echo.Context) error {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: buildURL(base)},
	}
	for _, p := range a.Posts.List() {
		if p.Status != content.StatusPublished {
			continue
		}
		urls = append(urls, sitemapURL{
			Loc:     buildURL(base, "blog", p.ID),
			LastMod: p.Date,
		})
	}
	for _, cs := range a.Cases.List() {
		if cs.Status != content.StatusPublished {
			continue
		}
		urls = append(urls, sitemapURL{
			Loc: buildURL(base, "cases", cs.Slug),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}

// buildURL joins a base URL with path segments, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}
