// Package controlserver exposes an optional gin HTTP API for observing and
// nudging a running daemon: health, current status, configured probes, tick
// history, and an on-demand tick trigger.
package controlserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/last-emo-boy/autosuspendd/pkg/database"
	"github.com/last-emo-boy/autosuspendd/pkg/probe"
)

// Ticker is the subset of processor.Processor the control server can drive
// on demand.
type Ticker interface {
	Iteration(ctx context.Context, now time.Time, justWokeUp bool) error
}

// Server wraps a gin engine and an http.Server bound to it.
type Server struct {
	engine *gin.Engine
	http   *http.Server
}

// Status is what /api/v1/status reports.
type Status struct {
	Running          bool      `json:"running"`
	ActivityProbes   []string  `json:"activity_probes"`
	WakeupProbes     []string  `json:"wakeup_probes"`
	LastTickAt       time.Time `json:"last_tick_at,omitempty"`
	LastTickActive   bool      `json:"last_tick_active"`
	LastTickResolved bool      `json:"last_tick_resolved"`
}

// StatusProvider supplies the data behind /api/v1/status.
type StatusProvider func() Status

// New builds a control server bound to addr. db is optional; when nil the
// history endpoint reports an empty list instead of failing.
func New(addr string, activities []probe.Activity, wakeups []probe.Wakeup, db *database.DB, ticker Ticker, status StatusProvider) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().Unix()})
	})

	api := engine.Group("/api/v1")
	{
		api.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, status())
		})

		api.GET("/probes", func(c *gin.Context) {
			names := func(kind string) []string {
				var out []string
				if kind == "activity" {
					for _, a := range activities {
						out = append(out, a.Name())
					}
				} else {
					for _, w := range wakeups {
						out = append(out, w.Name())
					}
				}
				return out
			}
			c.JSON(http.StatusOK, gin.H{
				"activities": names("activity"),
				"wakeups":    names("wakeup"),
			})
		})

		api.GET("/history", func(c *gin.Context) {
			if db == nil {
				c.JSON(http.StatusOK, gin.H{"ticks": []database.Tick{}})
				return
			}
			ticks, err := db.TickRepository().Recent(50)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"ticks": ticks})
		})

		control := api.Group("/control")
		{
			control.POST("/tick", func(c *gin.Context) {
				requestID := uuid.New().String()
				if err := ticker.Iteration(c.Request.Context(), time.Now(), false); err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "request_id": requestID})
					return
				}
				c.JSON(http.StatusOK, gin.H{"triggered": true, "request_id": requestID})
			})
		}
	}

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:           addr,
			Handler:        engine,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
	}
}

// Engine exposes the underlying gin engine, primarily for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start runs the HTTP server in the background; errors other than a clean
// shutdown are sent on the returned channel.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
