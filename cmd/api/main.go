// Command api serves the HTTP surface over a running Postgres instance:
// trigger a run, poll its status, fetch its report.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"energy-core/internal/config"
	"energy-core/internal/storage"
)

func main() {
	cfgPath := os.Getenv("ENERGY_CORE_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	store, err := storage.Open(cfg.Database.DSN(), cfg.Database.MaxOpenConns)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("migrate schema: %v", err)
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins(cfg.API.AllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})
	router.Use(func(c *gin.Context) {
		corsMiddleware.HandlerFunc(c.Writer, c.Request)
		c.Next()
	})

	h := &handlers{store: store}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/runs", h.createRun)
		api.GET("/runs/:id", h.getRun)
		api.GET("/runs/:id/report", h.getReport)
	}

	log.Printf("starting API server on %s", cfg.API.ListenAddr)
	if err := router.Run(cfg.API.ListenAddr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
