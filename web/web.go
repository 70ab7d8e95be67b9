// Package web assembles the storerate HTTP server: router, middleware,
// controllers, TLS and background jobs.
package web

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/storerate/storerate/config"
	"github.com/storerate/storerate/logger"
	"github.com/storerate/storerate/util/common"
	"github.com/storerate/storerate/util/metrics"
	"github.com/storerate/storerate/web/controller"
	"github.com/storerate/storerate/web/entity"
	"github.com/storerate/storerate/web/job"
	"github.com/storerate/storerate/web/middleware"
	"github.com/storerate/storerate/web/network"
	"github.com/storerate/storerate/web/policy"
	"github.com/storerate/storerate/web/service"
)

// Server is the API server together with its scheduled jobs.
type Server struct {
	cfg *config.Config

	httpServer *http.Server
	listener   net.Listener

	deps *controller.Deps
	api  *controller.APIController

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer builds the services from cfg. The database must already be open.
func NewServer(cfg *config.Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	p := policy.Policy{AdminRespondAll: cfg.AdminRespondAll}
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	return &Server{
		cfg: cfg,
		deps: &controller.Deps{
			Policy:      p,
			Tokens:      tokens,
			Users:       service.NewUserService(tokens, p),
			Stores:      service.NewStoreService(p),
			Ratings:     service.NewRatingService(p),
			AuthLimiter: middleware.NewRateLimiter(cfg.AuthRatePerMinute, cfg.AuthRateBurst),
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Handler returns the full HTTP handler: the gin engine behind CORS.
func (s *Server) Handler() http.Handler {
	engine := s.initRouter()
	return cors.New(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           600,
	}).Handler(engine)
}

func (s *Server) initRouter() *gin.Engine {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		logger.Error("panic serving", c.Request.URL.Path, ":", err)
		middleware.Abort(c, common.Internal("panic", common.NewErrorf("%v", err)))
	}))
	engine.Use(middleware.RequestID(), middleware.Metrics())
	if s.cfg.Domain != "" {
		engine.Use(middleware.DomainValidator(s.cfg.Domain))
	}
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	g := engine.Group(s.cfg.BasePath)
	g.Use(middleware.Timeout(s.cfg.RequestTimeout), middleware.Authenticate(s.deps.Tokens))
	s.api = controller.NewAPIController(g, s.deps)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, entity.ErrorMsg{Kind: common.KindNotFound, Msg: "route not found"})
	})
	return engine
}

// startTask schedules background jobs.
func (s *Server) startTask() {
	if _, err := s.cron.AddJob("@every 1m", job.NewStatsJob(s.ctx)); err != nil {
		logger.Warning("add stats job:", err)
	}
	if _, err := s.cron.AddJob("@every 5m", job.NewRateLimitCleanupJob(s.deps.AuthLimiter, 10*time.Minute)); err != nil {
		logger.Warning("add rate limit cleanup job:", err)
	}
	if _, err := s.cron.AddJob("@hourly", job.NewCheckpointJob()); err != nil {
		logger.Warning("add checkpoint job:", err)
	}
	job.NewStatsJob(s.ctx).Run()
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	s.cron = cron.New()
	s.cron.Start()

	listener, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}

	if s.cfg.CertFile != "" || s.cfg.KeyFile != "" {
		if cert, err := tls.LoadX509KeyPair(s.cfg.CertFile, s.cfg.KeyFile); err == nil {
			tlsCfg := &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
			listener = network.NewRedirectListener(listener)
			listener = tls.NewListener(listener, tlsCfg)
			logger.Info("Web server running HTTPS on", listener.Addr())
		} else {
			logger.Error("Error loading certificates:", err)
			logger.Info("Web server running HTTP on", listener.Addr())
		}
	} else {
		logger.Info("Web server running HTTP on", listener.Addr())
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve:", err)
		}
	}()

	s.startTask()
	return nil
}

// Stop shuts the server down, waiting up to 10s for in-flight requests.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	var err1, err2 error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err1 = s.httpServer.Shutdown(ctx)
	}
	if s.listener != nil {
		// Shutdown already closes the listener
		if err2 = s.listener.Close(); errors.Is(err2, net.ErrClosed) {
			err2 = nil
		}
	}
	return common.Combine(err1, err2)
}
