// Package server assembles the HTTP router.
package server

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mikepea/wishwell/pkg/wishwell/auth"
	"github.com/mikepea/wishwell/pkg/wishwell/claims"
	"github.com/mikepea/wishwell/pkg/wishwell/dashboard"
	"github.com/mikepea/wishwell/pkg/wishwell/gifts"
	"github.com/mikepea/wishwell/pkg/wishwell/groupgift"
	"github.com/mikepea/wishwell/pkg/wishwell/groups"
	"github.com/mikepea/wishwell/pkg/wishwell/importexport"
	"github.com/mikepea/wishwell/pkg/wishwell/invites"
	"github.com/mikepea/wishwell/pkg/wishwell/middleware"
	"github.com/mikepea/wishwell/pkg/wishwell/notify"
	"github.com/mikepea/wishwell/pkg/wishwell/profiles"
	"github.com/mikepea/wishwell/pkg/wishwell/spending"
	"github.com/mikepea/wishwell/pkg/wishwell/storage"
	"github.com/mikepea/wishwell/pkg/wishwell/versions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps are the collaborators the router is built from. Uploader, Notifier,
// InviteLimiter and Registry are optional.
type Deps struct {
	DB            *gorm.DB
	Verifier      *auth.Verifier
	Logger        *slog.Logger
	Uploader      storage.Uploader
	Notifier      notify.Notifier
	InviteLimiter *middleware.IPRateLimiter
	Registry      *prometheus.Registry
	CORSOrigins   []string
	WebDistPath   string
}

// spaRoutes are served index.html when a frontend build is present
var spaRoutes = []string{"/", "/login", "/dashboard", "/gifts", "/groups", "/claimed", "/profile"}

// New builds the router with every API route registered
func New(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := d.Notifier
	if notifier == nil {
		notifier = notify.LogNotifier{Logger: logger}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Tracing())
	r.Use(middleware.Logger(logger))
	if d.Registry != nil {
		r.Use(middleware.NewMetrics(d.Registry).Handler())
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader, "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"service": "wishwell",
			})
		})

		// Release notices are public
		versions.NewHandler(d.DB).RegisterRoutes(api.Group("/versions"))

		authed := api.Group("", auth.Middleware(d.Verifier))

		// Profile routes are reachable before a profile exists
		profiles.NewHandler(d.DB, d.Uploader).RegisterRoutes(authed)

		app := authed.Group("", profiles.RequireProfile(d.DB))

		gifts.NewHandler(d.DB).RegisterRoutes(app)
		claims.NewHandler(claims.NewService(d.DB)).RegisterRoutes(app)
		groupgift.NewHandler(d.DB).RegisterRoutes(app)

		groupsHandler := groups.NewHandler(d.DB, d.Uploader)
		groupsHandler.RegisterRoutes(app.Group("/groups"))
		groupsHandler.RegisterMemberRoutes(app)

		invites.NewHandler(d.DB, notifier, d.InviteLimiter).RegisterRoutes(app)
		spending.NewHandler(d.DB).RegisterRoutes(app.Group("/claimed"))
		dashboard.NewHandler(d.DB).RegisterRoutes(app.Group("/dashboard"))
		importexport.NewHandler(d.DB).RegisterRoutes(app.Group("/wishlist"))
	}

	serveFrontend(r, d.WebDistPath, logger)
	return r
}

// serveFrontend serves a built single-page app from dir when it exists
func serveFrontend(r *gin.Engine, dir string, logger *slog.Logger) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); err != nil {
		logger.Info("no frontend build found, API only mode", "path", dir)
		return
	}

	r.Static("/assets", filepath.Join(dir, "assets"))
	r.StaticFile("/favicon.ico", filepath.Join(dir, "favicon.ico"))

	indexHTML := filepath.Join(dir, "index.html")
	for _, route := range spaRoutes {
		r.GET(route, func(c *gin.Context) {
			c.File(indexHTML)
		})
	}
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method == http.MethodGet && !isAPIPath(c.Request.URL.Path) {
			c.File(indexHTML)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	logger.Info("serving frontend", "path", dir)
}

func isAPIPath(p string) bool {
	return p == "/api" || len(p) > 4 && p[:5] == "/api/"
}
