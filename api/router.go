package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/xfeed/api/handler"
	"github.com/use-agent/xfeed/api/middleware"
	"github.com/use-agent/xfeed/cache"
	"github.com/use-agent/xfeed/config"
	"github.com/use-agent/xfeed/metrics"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Runner    handler.Runner
	Cache     *cache.Cache
	Tracker   *handler.Tracker
	StartTime time.Time
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → Metrics
//	/scrape: Auth (if enabled) → RateLimit
//
// The banner, health and metrics endpoints stay open for probes.
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(metrics.Middleware())

	r.GET("/", handler.Banner())
	r.GET("/healthz", handler.Health(deps.Tracker, deps.StartTime))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	scrape := []gin.HandlerFunc{}
	if cfg.Auth.Enabled {
		scrape = append(scrape, middleware.Auth(cfg.Auth.APIKeys))
	}
	scrape = append(scrape,
		middleware.RateLimit(cfg.RateLimit),
		handler.Scrape(cfg, deps.Runner, deps.Cache, deps.Tracker),
	)
	r.GET("/scrape", scrape...)

	return r
}
