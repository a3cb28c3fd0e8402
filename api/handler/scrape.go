package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/xfeed/cache"
	"github.com/use-agent/xfeed/config"
	"github.com/use-agent/xfeed/metrics"
	"github.com/use-agent/xfeed/models"
)

// Runner performs one scrape.
type Runner interface {
	Run(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeResult, error)
}

// Scrape returns a handler for GET /scrape.
//
// Orchestration flow:
//  1. Parse query parameters over the configured defaults.
//  2. Serve from cache when maxAge allows it.
//  3. Run the scrape detached from the client connection, bounded by
//     MaxDuration.
//  4. Respond {count, items} plus meta when debug is set.
func Scrape(cfg *config.Config, runner Runner, cc *cache.Cache, tr *Tracker) gin.HandlerFunc {
	metrics.Init()
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		req, err := cfg.ParseScrapeRequest(c.Request.URL.Query())
		if err != nil {
			respondError(c, err)
			return
		}

		// ── 2. Cache lookup ─────────────────────────────────────────
		var cacheKey string
		if cc != nil && req.MaxAge > 0 {
			cacheKey = cache.Key(req)
			cached, hit := cc.Get(cacheKey, req.MaxAge)
			metrics.ObserveCacheLookup(hit)
			if hit {
				respond(c, req, cached, "hit", totalStart)
				return
			}
		}

		// ── 3. Scrape ───────────────────────────────────────────────
		result, err := track(c, cfg, runner, req, tr)

		if err != nil {
			metrics.ObserveScrape("", "error", 0, 0, time.Since(totalStart))
			slog.Error("scrape failed", "url", req.TargetURL, "error", err)
			respondError(c, err)
			return
		}
		metrics.ObserveScrape(string(result.ModeUsed), "success",
			len(result.Records), result.RevealRounds, time.Since(totalStart))
		slog.Info("scrape complete",
			"url", req.TargetURL,
			"count", len(result.Records),
			"mode", result.ModeUsed,
			"authWall", result.HitAuthWall,
			"ms", time.Since(totalStart).Milliseconds())

		// ── 4. Cache store and respond ──────────────────────────────
		status := ""
		if cacheKey != "" {
			cc.Set(cacheKey, result)
			status = "miss"
		}
		respond(c, req, result, status, totalStart)
	}
}

func respond(c *gin.Context, req *models.ScrapeRequest, res *models.ScrapeResult, cacheStatus string, start time.Time) {
	items := res.Records
	if items == nil {
		items = []models.Record{}
	}
	resp := models.ScrapeResponse{Count: len(items), Items: items}
	if req.Debug {
		resp.Meta = &models.ScrapeMeta{
			ModeUsed:     res.ModeUsed,
			HitAuthWall:  res.HitAuthWall,
			FinalURL:     res.FinalURL,
			RevealRounds: res.RevealRounds,
			Attempts:     res.Attempts,
			CacheStatus:  cacheStatus,
			TotalMs:      time.Since(start).Milliseconds(),
		}
	}
	c.JSON(http.StatusOK, resp)
}

// respondError writes {error} with 400 for input errors and 500 for
// everything else.
func respondError(c *gin.Context, err error) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, "internal error", err)
	}

	msg := scrapeErr.Error()
	if scrapeErr.Code == models.ErrCodeInvalidInput {
		msg = scrapeErr.Message
	}
	c.JSON(mapErrorToStatus(scrapeErr), models.ErrorResponse{Error: msg})
}

// mapErrorToStatus translates error codes to HTTP status codes.
// track runs one scrape detached from the client connection, counting it
// as in flight until Run returns or panics.
func track(c *gin.Context, cfg *config.Config, runner Runner, req *models.ScrapeRequest, tr *Tracker) (*models.ScrapeResult, error) {
	tr.begin()
	defer tr.end()
	metrics.IncActiveScrapes()
	defer metrics.DecActiveScrapes()

	ctx := context.WithoutCancel(c.Request.Context())
	if cfg.Scraper.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Scraper.MaxDuration)
		defer cancel()
	}
	return runner.Run(ctx, req)
}

func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	default:
		return http.StatusInternalServerError // 500
	}
}
