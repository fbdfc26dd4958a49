package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"boxtrack/cmd"
	"boxtrack/internal/boxes"
	"boxtrack/internal/config"
	"boxtrack/internal/database"
	"boxtrack/internal/ledger"
	"boxtrack/internal/logger"
	"boxtrack/internal/middleware"
	"boxtrack/internal/moves"
	"boxtrack/internal/rate_limiter"
	"boxtrack/internal/resolver"
	"boxtrack/internal/scanlog"
)

func init() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load .env file, but don't overwrite system environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, falling back to system environment variables.")
	}

	cmd.Execute(ctx)
}

func main() {
	zlog := logger.NewLogger()
	defer zlog.Sync()

	cfg := config.FromEnv()

	store, cleanup, err := openStore(cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to open storage backend", zap.Error(err))
	}
	defer cleanup()

	res := resolver.NewResolver(store)

	router := gin.Default()
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORSMiddleware())

	writeLimiter := rate_limiter.NewRateLimiter(120, time.Minute)
	limited := router.Group("", writeLimiter.Middleware())

	boxes.RegisterRoutes(router, store)
	moves.RegisterRoutes(limited, store, res)
	scanlog.RegisterRoutes(limited, store)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "try": []string{"/health", "/api/locations", "/app"}})
	})
	router.GET("/health", middleware.HealthCheckHandler(store))

	registerAppShell(router)

	zlog.Info("Starting server", zap.String("host", cfg.AppHost))
	if err := router.Run(cfg.AppHost); err != nil {
		panic(err)
	}
}

func openStore(cfg config.Config, zlog *zap.Logger) (ledger.Store, func(), error) {
	if cfg.UsePostgres() {
		db, err := database.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		zlog.Info("Connected to Postgres backend")

		store, err := ledger.NewPostgresStore(db, cfg)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil
	}

	db, err := database.NewSQLiteConnection(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	if err := database.InitSQLiteSchema(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	zlog.Info("Connected to embedded SQLite backend", zap.String("path", cfg.SQLitePath))

	return ledger.NewSQLiteStore(db), func() { db.Close() }, nil
}

// registerAppShell serves the scanner web shell when a wwwroot directory is
// deployed next to the binary, and a small placeholder page otherwise.
func registerAppShell(router *gin.Engine) {
	const wwwroot = "./wwwroot"

	if _, err := os.Stat(wwwroot); err == nil {
		router.Static("/app", wwwroot)
		log.Println("Route /app registered from wwwroot.")
		return
	}

	log.Printf("Warning: %s not found. Route /app will serve a fallback page.\n", wwwroot)
	router.GET("/app", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(appFallbackHTML))
	})
}

const appFallbackHTML = `<html><head><meta charset="utf-8"><title>boxtrack /app</title></head>
<body style="font-family:sans-serif">
  <h2>boxtrack</h2>
  <p>Deployment is up. Add a <code>wwwroot/</code> directory to serve the scanner app.</p>
  <ul>
    <li><a href="/health">/health</a></li>
    <li><a href="/api/locations">/api/locations</a></li>
  </ul>
</body></html>`
