package http

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booklib/internal/auth"
	"github.com/mrlokans/booklib/internal/config"
	"github.com/mrlokans/booklib/internal/database"
	"github.com/mrlokans/booklib/internal/database/books"
)

// RouterConfig carries all dependencies for route registration.
type RouterConfig struct {
	BookStore      BookStore
	CoverFetcher   CoverFetcher
	Database       *database.Database
	AuthController *auth.AuthController
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	AuthConfig     config.Auth
	CSRFSecret     []byte
	TemplatesPath  string
	StaticPath     string
	Version        string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.AuthConfig.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's
	// request replacement
	router.Use(cfg.SessionManager.SessionLoadSave())

	// Load HTML templates
	tmpl := template.Must(template.New("").ParseGlob(cfg.TemplatesPath + "/*.html"))
	router.SetHTMLTemplate(tmpl)

	// Serve static files
	router.Static("/static", cfg.StaticPath)

	// Public routes
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)

	cfg.AuthController.RegisterRoutes(router)

	// Landing page: render for visitors, redirect logged-in users to their list
	router.GET("/", func(c *gin.Context) {
		if cfg.SessionManager.IsAuthenticated(c.Request) {
			c.Redirect(http.StatusFound, "/home")
			return
		}
		c.HTML(http.StatusOK, "landing", gin.H{})
	})

	// Protected book routes
	booksController := NewBooksController(cfg.BookStore, cfg.CoverFetcher)

	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		protected.GET("/home", booksController.ListPage(books.SortByID))
		protected.GET("/title", booksController.ListPage(books.SortByTitle))
		protected.GET("/rating", booksController.ListPage(books.SortByRating))
		protected.GET("/recency", booksController.ListPage(books.SortByDateRead))

		protected.GET("/add-book", booksController.AddBookPage)
		protected.POST("/add-book", booksController.AddBook)
		protected.GET("/book/:id", booksController.BookPage)
		protected.GET("/edit-book/:id", booksController.EditBookPage)
		protected.POST("/edit-book/:id", booksController.EditBook)
		protected.GET("/delete-book/:id", booksController.DeleteBook)
	}

	return router
}
