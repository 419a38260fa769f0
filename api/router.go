package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/viktorsistem/katalog/api/handler"
	"github.com/viktorsistem/katalog/api/middleware"
	"github.com/viktorsistem/katalog/config"
	"github.com/viktorsistem/katalog/engine"
	"github.com/viktorsistem/katalog/store"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if keys configured) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(eng *engine.Engine, st store.Store, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	// Downloaded assets are served straight from the upload directory under
	// the same /uploads prefix the stored records reference.
	r.Static("/uploads", cfg.Assets.UploadDir)

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(startTime))

	protected := v1.Group("")
	protected.Use(middleware.Auth(cfg.Server.APIKeys))
	protected.Use(middleware.RateLimit(cfg.Server))

	// Scrape
	protected.POST("/scrape", handler.Scrape(eng))
	protected.POST("/scrape/html", handler.ScrapeHTML(eng))

	// Bulk crawl
	protected.POST("/crawl/detect", handler.DetectCategory(eng))
	protected.POST("/crawl/page", handler.CollectPage(eng))
	protected.POST("/crawl/product", handler.CrawlProduct(eng))
	protected.POST("/crawl/bulk", handler.Bulk(eng))
	protected.POST("/crawl/category", handler.CrawlCategory(eng))

	// Catalog reads
	protected.GET("/products", handler.ListProducts(st))

	return r
}
