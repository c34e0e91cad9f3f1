package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/phoneshell/internal/api/http"
	"github.com/GriffinCanCode/phoneshell/internal/api/middleware"
	"github.com/GriffinCanCode/phoneshell/internal/api/ws"
	"github.com/GriffinCanCode/phoneshell/internal/bridge"
	"github.com/GriffinCanCode/phoneshell/internal/domain/catalog"
	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
	"github.com/GriffinCanCode/phoneshell/internal/domain/persist"
	"github.com/GriffinCanCode/phoneshell/internal/domain/session"
	"github.com/GriffinCanCode/phoneshell/internal/infrastructure/config"
	"github.com/GriffinCanCode/phoneshell/internal/infrastructure/logging"
	"github.com/GriffinCanCode/phoneshell/internal/infrastructure/monitoring"
)

// sweepInterval is how often idle phones are evicted
const sweepInterval = time.Minute

// Server wraps the HTTP server and dependencies
type Server struct {
	config  *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics

	router  *gin.Engine
	handler http.Handler
	http    *http.Server

	manager *session.Manager
	adapter *persist.Adapter
	bridge  *bridge.Client
	hub     *ws.Hub

	stop chan struct{}
	done chan struct{}
}

// New creates a new server instance
func New(cfg *config.Config) (*Server, error) {
	logger := newLogger(cfg.Logging)
	logger.Info("Initializing phoneshell",
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Backend),
		zap.Bool("bridge", cfg.Bridge.URL != ""),
	)

	metrics := monitoring.NewMetrics()

	cat, err := loadCatalog(cfg.Layout, logger.Component(logging.Catalog))
	if err != nil {
		return nil, err
	}
	metrics.SetCatalogApps(len(cat.Apps()))

	engine := layout.NewEngine(cat, layout.WithFolderName(cfg.Layout.DefaultFolderName))

	client := bridge.NewClient(bridge.Config{
		URL:      cfg.Bridge.URL,
		Resource: cfg.Bridge.Resource,
		Timeout:  cfg.Bridge.Timeout,
		Retries:  cfg.Bridge.Retries,
		RPS:      cfg.Bridge.RPS,
	}, logger.Component(logging.Bridge), metrics)

	store, err := openStore(context.Background(), cfg.Storage)
	if err != nil {
		return nil, err
	}

	opts := []session.Option{
		session.WithLongPress(cfg.Layout.LongPress),
		session.WithMetrics(metrics),
	}
	if cfg.Storage.MirrorBridge && client.Enabled() {
		mirror := bridge.NewStore(client, logger.Component(logging.Bridge))
		store = persist.NewMirror(store, mirror)
		opts = append(opts, session.WithLoadHook(mirror.Remember))
	}
	logger.Info("Layout storage ready", zap.String("backend", store.Name()))

	adapter := persist.NewAdapter(store, engine, logger.Component(logging.Persist),
		persist.WithQueueSize(cfg.Storage.Queue),
		persist.WithMetrics(metrics),
	)

	hub := ws.NewHub(logger.Component(logging.WS), metrics)
	manager := session.NewManager(engine, adapter, hub, logger.Component(logging.Session), opts...)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Component(logging.HTTP)))
	router.Use(monitoring.Middleware(metrics))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowLocalhost = cfg.Logging.Development
	router.Use(middleware.CORS(corsCfg))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	apihttp.NewHandlers(manager, adapter, client, metrics, logger.Component(logging.HTTP)).Register(router)
	ws.NewHandler(hub, manager, logger.Component(logging.WS), metrics).Register(router)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/log/level", gin.WrapH(logger.LevelHandler()))
	router.PUT("/log/level", gin.WrapH(logger.LevelHandler()))

	s := &Server{
		config:  cfg,
		logger:  logger,
		metrics: metrics,
		router:  router,
		handler: compress(router),
		manager: manager,
		adapter: adapter,
		bridge:  client,
		hub:     hub,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	logger.Info("Server initialized successfully")
	return s, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Manager returns the session manager
func (s *Server) Manager() *session.Manager {
	return s.manager
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go s.sweep()

	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, drops open streams and writes every
// pending layout before returning
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		close(s.stop)
		<-s.done
	}

	s.hub.Close()
	s.manager.Close()
	if err := s.adapter.Close(ctx); err != nil {
		s.logger.Error("Failed to flush layouts", zap.Error(err))
		errs = append(errs, fmt.Errorf("flush layouts: %w", err))
	} else {
		s.logger.Info("Pending layouts written")
	}

	_ = s.logger.Sync()
	return errors.Join(errs...)
}

// sweep evicts idle phones until Shutdown
func (s *Server) sweep() {
	defer close(s.done)
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.manager.EvictIdle(s.config.Layout.IdleTTL); n > 0 {
				s.logger.Debug("Evicted idle phones", zap.Int("count", n))
			}
		case <-s.stop:
			return
		}
	}
}

func newLogger(cfg config.LogConfig) *logging.Logger {
	base := logging.DefaultConfig()
	if cfg.Development {
		base = logging.DevelopmentConfig()
	}
	if cfg.Level != "" {
		base.Level = cfg.Level
	}
	return logging.NewOrNop(base)
}

// loadCatalog returns the built-in catalog, with overlays from dir applied
func loadCatalog(cfg config.LayoutConfig, logger *zap.Logger) (*catalog.Catalog, error) {
	base := catalog.Default()
	if cfg.CatalogDir == "" {
		return catalog.New(base.Apps(), base.DefaultDock(), cfg.MaxDockApps), nil
	}
	cat, err := catalog.NewLoader(cfg.CatalogDir, logger).Load(base, cfg.MaxDockApps)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

func openStore(ctx context.Context, cfg config.StorageConfig) (persist.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return persist.NewMemoryStore(), nil
	case config.BackendSQLite:
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage dir: %w", err)
		}
		return persist.OpenSQLite(ctx, filepath.Join(cfg.Path, "layouts.db"))
	default:
		return persist.NewFileStore(cfg.Path)
	}
}

// compress gzips responses except websocket upgrades, which need the raw
// connection
func compress(next http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/ws/") {
			next.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}
