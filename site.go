// Package site is the backend for the agency's marketing site: a JSON API
// serving published posts and case studies, an authenticated admin API for
// managing them, and a server-sent event stream that keeps open admin
// dashboards in sync with store changes.
package site

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pulsodigital/site/content"
	"github.com/pulsodigital/site/storage"
)

// App wires together the store, the two content repositories, and the Echo
// server.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *storage.Store
	Posts  *content.Repository[content.Post]
	Cases  *content.Repository[content.Case]

	loginLimiter *loginLimiter
	events       *eventHub
	subs         []content.Subscription
}

// New creates an App with the given configuration. Call Start to open the
// store and serve.
func New(cfg Config) *App {
	return &App{
		Config:       cfg,
		Echo:         echo.New(),
		loginLimiter: newLoginLimiter(5, time.Minute),
		events:       newEventHub(),
	}
}

// Start opens the store, loads both repositories, wires middleware and
// routes, and serves until the listener fails or the server is shut down.
func (a *App) Start(ctx context.Context) error {
	if err := a.init(ctx); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// init prepares everything short of listening. Split out so tests can drive
// the handlers without a live listener.
func (a *App) init(ctx context.Context) error {
	store, err := storage.NewStore(a.Config.DatabasePath)
	if err != nil {
		return err
	}
	a.Store = store

	// Both repositories read the session the HTTP layer injects into the
	// request context.
	sessions := content.ContextSessions{}
	a.Posts = content.NewRepository(content.PostDescriptor(), store, sessions)
	a.Cases = content.NewRepository(content.CaseDescriptor(), store, sessions)
	if err := a.Posts.Start(ctx); err != nil {
		return err
	}
	if err := a.Cases.Start(ctx); err != nil {
		return err
	}

	// Forward raw store events to connected dashboards.
	a.subs = append(a.subs,
		store.Subscribe(content.TablePosts, a.events.broadcast),
		store.Subscribe(content.TableCases, a.events.broadcast),
	)

	a.setupMiddleware()
	a.setupRoutes()
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.Config.StaticDir)
	e.Static("/blog", a.Config.UploadsDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Public content API, published records only.
	e.GET("/api/posts", a.handleListPosts)
	e.GET("/api/posts/:id", a.handleGetPost)
	e.GET("/api/cases", a.handleListCases)
	e.GET("/api/cases/:slug", a.handleGetCase)

	// Admin API. Everything below requireAdmin also runs withStoreSession,
	// which is what lets repository mutations through their session gate.
	e.POST("/admin/api/login", a.handleLogin)
	e.POST("/admin/api/logout", a.handleLogout)
	e.GET("/admin/api/session", a.handleSession)

	admin := e.Group("/admin/api", a.requireAdmin, a.withStoreSession)
	admin.GET("/posts", a.handleAdminListPosts)
	admin.POST("/posts", a.handleCreatePost)
	admin.PUT("/posts/:id", a.handleUpdatePost)
	admin.DELETE("/posts/:id", a.handleDeletePost)
	admin.POST("/posts/:id/toggle", a.handleTogglePost)
	admin.GET("/cases", a.handleAdminListCases)
	admin.POST("/cases", a.handleSaveCase)
	admin.DELETE("/cases/:id", a.handleDeleteCase)
	admin.POST("/cases/:id/toggle", a.handleToggleCase)
	admin.GET("/stats", a.handleStats)
	admin.GET("/events", a.handleEvents)
	admin.GET("/images", a.handleImageList)
	admin.POST("/images", a.handleImageUpload)
	admin.DELETE("/images/:filename", a.handleImageDelete)
}

// Close tears down subscriptions and closes the store. Call on shutdown.
func (a *App) Close() error {
	for _, sub := range a.subs {
		sub.Unsubscribe()
	}
	a.events.closeAll()
	if a.Posts != nil {
		a.Posts.Close()
	}
	if a.Cases != nil {
		a.Cases.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
