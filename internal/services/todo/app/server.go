package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	platformgrpc "github.com/louisbranch/taskboard/internal/platform/grpc"
	"github.com/louisbranch/taskboard/internal/platform/httpx"
	"github.com/louisbranch/taskboard/internal/platform/logging"
	"github.com/louisbranch/taskboard/internal/platform/ratelimit"
	"github.com/louisbranch/taskboard/internal/platform/timeouts"
	httpapi "github.com/louisbranch/taskboard/internal/services/todo/api/http"
	"github.com/louisbranch/taskboard/internal/services/todo/service"
	"github.com/louisbranch/taskboard/internal/services/todo/session"
	todosqlite "github.com/louisbranch/taskboard/internal/services/todo/storage/sqlite"
)

// HealthServiceName is the gRPC health service name reported by the listener.
const HealthServiceName = "taskboard.v1.TodoService"

const (
	defaultCleanupInterval = 10 * time.Minute
	limiterIdleTTL         = 10 * time.Minute
)

// Config holds everything the process needs to start.
type Config struct {
	HTTPAddr string
	// GRPCAddr enables the gRPC health listener when non-empty.
	GRPCAddr           string
	DBPath             string
	JWTSecret          string
	SessionTTL         time.Duration
	SessionIssuer      string
	CookieSecure       bool
	CORSOrigins        []string
	LoginRatePerMinute int
	LoginBurst         int
	BcryptCost         int
	CleanupInterval    time.Duration
}

// Server owns the listeners, the store and the services of one process.
type Server struct {
	httpListener    net.Listener
	httpServer      *http.Server
	grpcListener    net.Listener
	grpcServer      *grpc.Server
	health          *health.Server
	store           *todosqlite.Store
	accounts        *service.AccountService
	loginLimiter    *ratelimit.Registry
	cleanupInterval time.Duration
	log             *logrus.Entry
}

// New opens the store, builds the services and binds the listeners.
func New(cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http addr is required")
	}

	store, err := todosqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open todo sqlite store: %w", err)
	}

	handler, accounts, limiter, err := buildHandler(cfg, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	httpListener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("listen on http addr %s: %w", cfg.HTTPAddr, err)
	}

	var grpcListener net.Listener
	var grpcServer *grpc.Server
	var healthServer *health.Server
	if addr := strings.TrimSpace(cfg.GRPCAddr); addr != "" {
		grpcListener, err = net.Listen("tcp", addr)
		if err != nil {
			_ = httpListener.Close()
			_ = store.Close()
			return nil, fmt.Errorf("listen on grpc addr %s: %w", addr, err)
		}
		grpcServer, healthServer = platformgrpc.NewHealthServer(HealthServiceName)
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}

	return &Server{
		httpListener: httpListener,
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
			ReadTimeout:       timeouts.Read,
			WriteTimeout:      timeouts.Write,
			IdleTimeout:       timeouts.Idle,
		},
		grpcListener:    grpcListener,
		grpcServer:      grpcServer,
		health:          healthServer,
		store:           store,
		accounts:        accounts,
		loginLimiter:    limiter,
		cleanupInterval: cleanupInterval,
		log:             logging.Logger(),
	}, nil
}

func buildHandler(cfg Config, store *todosqlite.Store) (http.Handler, *service.AccountService, *ratelimit.Registry, error) {
	issuer, err := session.NewIssuer(session.Config{
		Secret: []byte(cfg.JWTSecret),
		TTL:    cfg.SessionTTL,
		Issuer: cfg.SessionIssuer,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build session issuer: %w", err)
	}
	hasher, err := service.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return nil, nil, nil, err
	}
	accounts, err := service.NewAccountService(service.AccountDeps{
		Users:       store,
		Revocations: store,
		Issuer:      issuer,
		Hasher:      hasher,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	tasks, err := service.NewTaskService(store, nil, nil)
	if err != nil {
		return nil, nil, nil, err
	}

	var limiter *ratelimit.Registry
	if cfg.LoginRatePerMinute > 0 {
		burst := cfg.LoginBurst
		if burst <= 0 {
			burst = cfg.LoginRatePerMinute
		}
		limiter = ratelimit.NewRegistry(ratelimit.PerMinute(cfg.LoginRatePerMinute), burst)
	}

	handler, err := httpapi.NewHandler(httpapi.Config{
		Accounts:     accounts,
		Tasks:        tasks,
		Sessions:     issuer,
		Health:       store,
		Metrics:      httpx.NewMetrics(),
		LoginLimiter: limiter,
		Cookies:      httpapi.CookiePolicy{Secure: cfg.CookieSecure},
		CORSOrigins:  cfg.CORSOrigins,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return handler, accounts, limiter, nil
}

// HTTPAddr returns the bound HTTP listener address.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// GRPCAddr returns the bound gRPC listener address, or "" when disabled.
func (s *Server) GRPCAddr() string {
	if s == nil || s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// Run builds a server and serves until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	srv, err := New(cfg)
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

// Serve runs the listeners and the cleanup loop until ctx ends or a
// listener fails, then shuts everything down within timeouts.Shutdown.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	serverCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.closeStore()

	go s.runCleanup(serverCtx)

	s.log.WithField("addr", s.HTTPAddr()).Info("todo HTTP server listening")
	httpErr := make(chan error, 1)
	go func() {
		httpErr <- s.httpServer.Serve(s.httpListener)
	}()

	grpcErr := make(chan error, 1)
	if s.grpcServer != nil {
		s.log.WithField("addr", s.GRPCAddr()).Info("todo gRPC health listening")
		go func() {
			grpcErr <- s.grpcServer.Serve(s.grpcListener)
		}()
	}

	shutdownGRPC := func() {
		if s.grpcServer == nil {
			return
		}
		if s.health != nil {
			s.health.Shutdown()
		}
		s.grpcServer.GracefulStop()
	}
	shutdownHTTP := func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}

	select {
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutdownGRPC()
		if err := shutdownHTTP(); err != nil {
			return fmt.Errorf("shutdown HTTP: %w", err)
		}
		if err := <-httpErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", err)
		}
		return nil
	case err := <-httpErr:
		shutdownGRPC()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	case err := <-grpcErr:
		_ = shutdownHTTP()
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

// runCleanup periodically drops expired revocations and idle limiter entries.
func (s *Server) runCleanup(ctx context.Context) {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupOnce(ctx)
		}
	}
}

func (s *Server) cleanupOnce(ctx context.Context) {
	deleted, err := s.accounts.PruneRevocations(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.log.WithError(err).Warn("prune revoked sessions")
		}
	} else if deleted > 0 {
		s.log.WithField("deleted", deleted).Debug("pruned revoked sessions")
	}
	if s.loginLimiter != nil {
		if pruned := s.loginLimiter.Prune(limiterIdleTTL); pruned > 0 {
			s.log.WithFields(logrus.Fields{
				"pruned":  pruned,
				"tracked": s.loginLimiter.Len(),
			}).Debug("pruned idle login limiters")
		}
	}
}

func (s *Server) closeStore() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.log.WithError(err).Warn("close todo store")
	}
}
