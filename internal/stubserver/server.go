// Package stubserver is an in-memory double of the clinic backend. It
// implements the REST surface the client consumes so the CLI can be
// developed and integration-tested without the production API. Real
// persistence and authorization live server-side in production and are
// deliberately absent here.
package stubserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/psiclinic/clinic-cli/pkg/logger"
)

type Config struct {
	JWTSecret     string
	TokenExpiry   time.Duration
	RatePerSecond float64
	RateBurst     int
}

type Server struct {
	cfg    Config
	store  *Store
	engine *gin.Engine
	log    *logger.Logger
}

func New(cfg Config, store *Store, log *logger.Logger) *Server {
	if cfg.TokenExpiry <= 0 {
		cfg.TokenExpiry = 12 * time.Hour
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 100
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 50
	}
	if log == nil {
		log = logger.NewLogger(nil)
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		cfg:    cfg,
		store:  store,
		engine: gin.New(),
		log:    log.WithComponent("stubserver"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.Use(gin.Recovery())
	s.engine.Use(requestID())
	s.engine.Use(requestLogger(s.log))
	s.engine.Use(rateLimit(rate.Limit(s.cfg.RatePerSecond), s.cfg.RateBurst))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine.POST("/session", s.login)

	authed := s.engine.Group("/")
	authed.Use(s.authenticate())
	{
		authed.GET("/psychologist/me", s.me)

		authed.GET("/patients", s.listPatients)
		authed.POST("/patient", s.createPatient)
		authed.GET("/patient/:id", s.getPatient)
		authed.PUT("/patient/:id", s.updatePatient)
		authed.DELETE("/patient/:id", s.deletePatient)

		authed.GET("/appointments", s.listAppointments)
		authed.PUT("/appointments/:id", s.updateAppointment)
		authed.POST("/appointments/:id/start", s.startSession)
		authed.POST("/sessions/:id/finish", s.finishSession)

		authed.GET("/approvals", s.listApprovals)
		authed.PATCH("/approvals/:id/approve", s.approve)

		authed.GET("/suggestions", s.listSuggestions)
		authed.POST("/suggestions", s.createSuggestion)
		authed.PATCH("/suggestions/:id/like", s.likeSuggestion)
		authed.PATCH("/suggestions/:id/status", s.transitionSuggestion)
	}
}

// Handler exposes the router for http.Server and httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}
