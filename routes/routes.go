package routes

import (
	"time"

	"jewelrydam/config"
	"jewelrydam/handlers"
	"jewelrydam/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

const thumbCacheTime = 86400

// New builds the router with the middleware stack and every API route
func New(cfg *config.Config, h *handlers.Handlers) *gin.Engine {
	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	if cfg.DebugMode {
		router.Use(utils.ErrorLogMiddleware)
	}
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          30 * 24 * time.Hour,
	}))
	if !cfg.DebugMode {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{"^/files/", "/thumb$"})))
	}
	router.Use((&utils.CacheRouter{CacheTime: utils.CacheNoCache}).Handler()) // No cache by default, individual end-points can override that
	Setup(router, h)
	return router
}

func Setup(router gin.IRouter, h *handlers.Handlers) {
	api := router.Group("/api")
	api.GET("/health", h.Health)
	// Asset handlers
	api.GET("/assets", h.AssetList)
	api.POST("/assets", h.AssetCreate)
	api.GET("/assets/recent", h.AssetRecent)
	api.GET("/assets/search", h.AssetSearch)
	api.GET("/assets/:id", h.AssetGet)
	api.PUT("/assets/:id", h.AssetUpdate)
	api.DELETE("/assets/:id", h.AssetDelete)
	api.GET("/assets/:id/thumb", (&utils.CacheRouter{CacheTime: thumbCacheTime}).Handler(), h.AssetThumb)
	// Project handlers
	api.GET("/projects", h.ProjectList)
	api.POST("/projects", h.ProjectCreate)
	api.GET("/projects/:id", h.ProjectGet)
	api.PUT("/projects/:id", h.ProjectUpdate)
	api.DELETE("/projects/:id", h.ProjectDelete)
	api.GET("/projects/:id/assets", h.ProjectAssets)
	// Client handlers
	api.GET("/clients", h.ClientList)
	api.POST("/clients", h.ClientCreate)
	// Audit and maintenance
	api.GET("/uploads/log", h.UploadLog)
	api.GET("/storage/orphans", h.OrphanList)
	api.POST("/storage/reconcile", h.Reconcile)

	if h.ServesFiles() {
		router.GET("/files/*path", (&utils.CacheRouter{CacheTime: thumbCacheTime}).Handler(), h.FileServe)
	}
}
