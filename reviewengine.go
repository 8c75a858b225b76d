// Package reviewengine serves a research review blog as a JSON API built on
// Echo: users, blog posts reviewing research papers, categories, tags and
// threaded comments, plus RSS, a sitemap and image uploads.
//
// Content lives in a document store (SQLite by default; PostgreSQL, MongoDB
// or DynamoDB by configuration) behind the content package. Paper views are
// buffered in Redis when one is configured.
package reviewengine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/eringen/reviewengine/content"
	"github.com/eringen/reviewengine/counter"
	"github.com/eringen/reviewengine/docstore"
)

// App is the central application. It wires together the store, view
// counter, handlers and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *content.Store
	Views  *counter.Views // nil when Redis is not configured
	Cache  *PublishedCache

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	driver       docstore.Driver
	redis        *redis.Client
	stopSync     context.CancelFunc
	syncDone     <-chan struct{}
	ready        bool
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	a.Echo.HideBanner = true
	a.Echo.Logger.SetLevel(cfg.logLevel())

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup opens the store (and Redis when configured), then registers
// middleware and routes. Start calls it; tests call it directly and drive
// a.Echo with httptest.
func (a *App) Setup(ctx context.Context) error {
	if a.ready {
		return nil
	}
	if a.Config.TokenSecret == "" {
		return fmt.Errorf("reviewengine: TokenSecret is required")
	}

	if a.driver == nil {
		d, err := docstore.Open(ctx, a.Config.Store)
		if err != nil {
			return fmt.Errorf("reviewengine: open store: %w", err)
		}
		a.driver = d
	}
	store, err := content.NewStore(ctx, a.driver)
	if err != nil {
		return fmt.Errorf("reviewengine: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewPublishedCache(store, a.Config.FeedCacheTTL)

	if a.redis == nil && a.Config.RedisAddr != "" {
		rdb, err := counter.Connect(ctx, a.Config.RedisAddr, a.Config.RedisPassword)
		if err != nil {
			return fmt.Errorf("reviewengine: %w", err)
		}
		a.redis = rdb
	}
	if a.redis != nil {
		a.Views = counter.New(a.redis, "")
		syncCtx, cancel := context.WithCancel(context.Background())
		a.stopSync = cancel
		a.syncDone = counter.StartSync(syncCtx, a.Views, a.Store.Papers, a.Config.SyncInterval)
	}

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.ready = true
	return nil
}

// Start runs Setup and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(context.Background()); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/uploads", a.Config.UploadDir)
	e.GET("/healthz", a.handleHealth)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	api := e.Group("/api", a.Cache.invalidateOnWrite)
	auth := a.requireAuth

	api.POST("/auth/register", a.handleRegister)
	api.POST("/auth/login", a.handleLogin)
	api.POST("/auth/logout", a.handleLogout)
	api.GET("/auth/me", a.handleMe, auth)
	api.GET("/auth/login/validate", a.handleMe, auth)

	api.GET("/users", a.handleListUsers)
	api.POST("/users", a.handleCreateUser, auth)
	api.GET("/users/:id", a.handleGetUser)
	api.PUT("/users/:id", a.handleUpdateUser, auth)
	api.DELETE("/users/:id", a.handleDeleteUser, auth)

	api.GET("/posts", a.handleListPosts)
	api.POST("/posts", a.handleCreatePost, auth)
	api.GET("/posts/:id", a.handleGetPost)
	api.PUT("/posts/:id", a.handleUpdatePost, auth)
	api.DELETE("/posts/:id", a.handleDeletePost, auth)

	api.GET("/papers", a.handleListPapers)
	api.POST("/papers", a.handleCreatePaper, auth)
	api.GET("/papers/:id", a.handleGetPaper)
	api.PUT("/papers/:id", a.handleUpdatePaper, auth)
	api.DELETE("/papers/:id", a.handleDeletePaper, auth)

	api.GET("/categories", a.handleListCategories)
	api.POST("/categories", a.handleCreateCategory, auth)
	api.GET("/categories/slug/:slug", a.handleGetCategoryBySlug)
	api.GET("/categories/:id", a.handleGetCategory)
	api.PUT("/categories/:id", a.handleUpdateCategory, auth)
	api.DELETE("/categories/:id", a.handleDeleteCategory, auth)

	api.GET("/tags", a.handleListTags)
	api.POST("/tags", a.handleCreateTag, auth)
	api.GET("/tags/slug/:slug", a.handleGetTagBySlug)
	api.GET("/tags/:id", a.handleGetTag)
	api.PUT("/tags/:id", a.handleUpdateTag, auth)
	api.DELETE("/tags/:id", a.handleDeleteTag, auth)

	api.GET("/comments", a.handleListComments)
	api.POST("/comments", a.handleCreateComment, auth)
	api.GET("/comments/posts/:id", a.handleCommentsByPost)
	api.GET("/comments/:id", a.handleGetComment)
	api.PUT("/comments/:id", a.handleUpdateComment, auth)
	api.DELETE("/comments/:id", a.handleDeleteComment, auth)

	api.POST("/uploads/images", a.handleImageUpload, auth)
}

// Close stops the view sync (flushing pending counts) and releases the
// store and Redis connections. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopSync != nil {
		a.stopSync()
		<-a.syncDone
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	if a.driver != nil {
		return a.driver.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("reviewengine: required environment variable %s is not set", key)
	}
	return v
}
