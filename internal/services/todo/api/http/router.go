package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/louisbranch/taskboard/internal/platform/httpx"
	"github.com/louisbranch/taskboard/internal/platform/ratelimit"
	"github.com/louisbranch/taskboard/internal/platform/requestctx"
	"github.com/louisbranch/taskboard/internal/services/todo/service"
	"github.com/louisbranch/taskboard/internal/services/todo/session"
	"github.com/louisbranch/taskboard/internal/services/todo/task"
	"github.com/louisbranch/taskboard/internal/services/todo/user"
)

// APIPrefix is the mount point of the versioned REST API.
const APIPrefix = "/api/v1"

const tracerName = "taskboard/http"

// AccountService is the account surface the handlers need.
type AccountService interface {
	RevocationChecker
	SignUp(ctx context.Context, input service.SignUpInput) (user.User, error)
	Login(ctx context.Context, email, password string) (session.Token, user.User, error)
	Logout(ctx context.Context, current requestctx.Session) error
	Profile(ctx context.Context, userID string) (user.User, error)
	UpdateProfile(ctx context.Context, userID string, patch user.ProfilePatch) (user.User, error)
}

// TaskService is the task surface the handlers need.
type TaskService interface {
	CreateTask(ctx context.Context, ownerID, title string) (task.Task, error)
	ListTasks(ctx context.Context, ownerID string) ([]task.Task, error)
	UpdateTask(ctx context.Context, ownerID, taskID string, patch task.Patch) (task.Task, error)
	DeleteTask(ctx context.Context, ownerID, taskID string) error
}

// Pinger reports backing store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config wires the API handler.
type Config struct {
	Accounts     AccountService
	Tasks        TaskService
	Sessions     SessionVerifier
	Health       Pinger
	Metrics      *httpx.Metrics
	LoginLimiter *ratelimit.Registry
	Cookies      CookiePolicy
	CORSOrigins  []string
}

type handlers struct {
	accounts     AccountService
	tasks        TaskService
	sessions     SessionVerifier
	health       Pinger
	loginLimiter *ratelimit.Registry
	cookies      CookiePolicy
}

// NewHandler builds the root HTTP handler with the middleware stack, the
// public auth routes, and the guarded profile and task routes.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Accounts == nil {
		return nil, fmt.Errorf("account service is required")
	}
	if cfg.Tasks == nil {
		return nil, fmt.Errorf("task service is required")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session verifier is required")
	}

	h := &handlers{
		accounts:     cfg.Accounts,
		tasks:        cfg.Tasks,
		sessions:     cfg.Sessions,
		health:       cfg.Health,
		loginLimiter: cfg.LoginLimiter,
		cookies:      cfg.Cookies,
	}

	r := chi.NewRouter()
	r.Use(
		httpx.RequestID(),
		httpx.AccessLog(),
		httpx.Trace(tracerName, routePattern),
	)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware(routePattern))
	}
	// Recovery sits inside logging, tracing and metrics so a panic is
	// still recorded as a 500.
	r.Use(
		httpx.RecoverPanic(),
		httpx.SecurityHeaders(),
	)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = httpx.WriteMessage(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = httpx.WriteMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", h.handleHealth)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route(APIPrefix, func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/signup", h.handleSignUp)
			auth.Post("/login", h.handleLogin)
			auth.Post("/logout", h.handleLogout)
		})

		api.Group(func(private chi.Router) {
			private.Use(Guard(h.sessions, h.accounts))

			private.Get("/me", h.handleGetMe)
			private.Put("/me", h.handleUpdateMe)

			private.Post("/tasks", h.handleCreateTask)
			private.Get("/tasks", h.handleListTasks)
			private.Put("/tasks/{id}", h.handleUpdateTask)
			private.Delete("/tasks/{id}", h.handleDeleteTask)
		})
	})

	return r, nil
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			_ = httpx.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
	}
	_ = httpx.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// routePattern labels metrics and spans with the matched chi pattern.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	return rctx.RoutePattern()
}
