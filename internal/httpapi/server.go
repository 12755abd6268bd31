// Package httpapi exposes onboarding, course and progress operations over
// HTTP with bearer-token authentication.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/learnpath/internal/course"
	"github.com/abhisek/learnpath/internal/logger"
	"github.com/abhisek/learnpath/internal/profile"
	"github.com/abhisek/learnpath/internal/progress"
)

// Services are the operations the API serves.
type Services struct {
	Profiles *profile.Service
	Courses  *course.Service
	Progress *progress.Engine
}

// Server is the HTTP front end.
type Server struct {
	cfg Config
	svc Services
	log *logger.Logger
	now func() time.Time
}

// NewServer creates a Server.
func NewServer(cfg Config, svc Services, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		cfg: cfg,
		svc: svc,
		log: log.With("component", "httpapi"),
		now: time.Now,
	}
}

// Handler builds the gin router.
func (s *Server) Handler() http.Handler {
	if s.cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/health", s.health)

	api := r.Group("/api")
	api.Use(RequireAuth([]byte(s.cfg.JWTSecret), s.log))

	onboarding := api.Group("/onboarding")
	onboarding.POST("/submit", s.submitProfile)
	onboarding.GET("/profile", s.getProfile)

	courses := api.Group("/courses")
	courses.POST("/generate", s.generateCourse)
	courses.GET("", s.listCourses)
	courses.GET("/:id", s.getCourse)

	prog := api.Group("/progress")
	prog.POST("/module/:id/complete", s.completeModule)
	prog.GET("", s.getProgress)
	prog.GET("/stats", s.getStats)

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "not_found", errors.New("route not found"))
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request", "method", c.Request.Method, "path", c.Request.URL.Path,
			"status", c.Writer.Status(), "latency_ms", time.Since(start).Milliseconds())
	}
}
