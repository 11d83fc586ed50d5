// Package todo parses to-do API flags and launches the service.
package todo

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/taskboard/internal/platform/cmd"
	"github.com/louisbranch/taskboard/internal/platform/logging"
	server "github.com/louisbranch/taskboard/internal/services/todo/app"
	"github.com/louisbranch/taskboard/internal/services/todo/service"
)

// Config holds to-do command configuration.
type Config struct {
	HTTPAddr      string        `env:"TODO_HTTP_ADDR" envDefault:":8080"`
	GRPCPort      int           `env:"TODO_GRPC_PORT" envDefault:"0"`
	DBPath        string        `env:"TODO_DB_PATH" envDefault:"data/todo.db"`
	JWTSecret     string        `env:"TODO_JWT_SECRET,required,notEmpty"`
	SessionTTL    time.Duration `env:"TODO_SESSION_TTL" envDefault:"24h"`
	SessionIssuer string        `env:"TODO_SESSION_ISSUER" envDefault:"taskboard"`
	CookieSecure  bool          `env:"TODO_COOKIE_SECURE" envDefault:"false"`
	CORSOrigins   []string      `env:"TODO_CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	LoginRate     int           `env:"TODO_LOGIN_RATE" envDefault:"5"`
	LoginBurst    int           `env:"TODO_LOGIN_BURST" envDefault:"5"`
	BcryptCost    int           `env:"TODO_BCRYPT_COST" envDefault:"12"`
	Logging       logging.Config
}

// ParseConfig parses .env, environment and flags into Config. Flags win.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg, ".env"); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The to-do HTTP server address")
	fs.IntVar(&cfg.GRPCPort, "grpc-port", cfg.GRPCPort, "The gRPC health server port (0 disables)")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The SQLite database path")
	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "The log level")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.GRPCPort < 0 {
		return Config{}, fmt.Errorf("grpc port must not be negative")
	}
	cfg.CORSOrigins = normalizeOrigins(cfg.CORSOrigins)
	return cfg, nil
}

// ServerConfig maps command configuration onto the server's.
func (c Config) ServerConfig() server.Config {
	grpcAddr := ""
	if c.GRPCPort > 0 {
		grpcAddr = fmt.Sprintf(":%d", c.GRPCPort)
	}
	return server.Config{
		HTTPAddr:           c.HTTPAddr,
		GRPCAddr:           grpcAddr,
		DBPath:             c.DBPath,
		JWTSecret:          c.JWTSecret,
		SessionTTL:         c.SessionTTL,
		SessionIssuer:      c.SessionIssuer,
		CookieSecure:       c.CookieSecure,
		CORSOrigins:        c.CORSOrigins,
		LoginRatePerMinute: c.LoginRate,
		LoginBurst:         c.LoginBurst,
		BcryptCost:         c.BcryptCost,
	}
}

// Run starts the to-do API service.
func Run(ctx context.Context, cfg Config) error {
	logging.Init(entrypoint.ServiceTodo, cfg.Logging)
	if cfg.BcryptCost < service.DefaultBcryptCost {
		logging.Logger().WithField("cost", cfg.BcryptCost).Warn("bcrypt cost below default")
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceTodo, func(ctx context.Context) error {
		return server.Run(ctx, cfg.ServerConfig())
	})
}

// normalizeOrigins trims entries and trailing slashes and drops blanks.
func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		if trimmed := strings.TrimRight(strings.TrimSpace(origin), "/"); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
