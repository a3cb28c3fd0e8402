package handler

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/xfeed/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Tracker counts scrapes in flight. Each one owns a browser process, so
// the count is the number of running browsers.
type Tracker struct {
	active atomic.Int32
}

func (t *Tracker) begin() {
	if t != nil {
		t.active.Add(1)
	}
}

func (t *Tracker) end() {
	if t != nil {
		t.active.Add(-1)
	}
}

// Active returns the number of scrapes in flight.
func (t *Tracker) Active() int {
	if t == nil {
		return 0
	}
	return int(t.active.Load())
}

// Health returns a handler for GET /healthz.
func Health(tr *Tracker, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:        "ok",
			Uptime:        time.Since(startTime).Round(time.Second).String(),
			ActiveScrapes: tr.Active(),
			Version:       Version,
		})
	}
}

// Banner returns a handler for GET /.
func Banner() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "xfeed API is running")
	}
}
