// Package config reads the runtime configuration from the process environment.
package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/myrjola/murderai/internal/errors"
)

// Config is shared by the web server, the CLI and the MCP server.
type Config struct {
	// Addr is the HTTP listen address. Use port 0 to let the OS pick one.
	Addr string `env:"MURDERAI_ADDR" envDefault:"localhost:4000"`
	// SQLiteURL is the transcript archive location or ":memory:".
	SQLiteURL string `env:"MURDERAI_SQLITE_URL" envDefault:"./murderai.sqlite"`
	// CasesDir overrides the embedded case documents when set.
	CasesDir string `env:"MURDERAI_CASES_DIR"`
	// SessionIdleTimeout evicts games that have seen no action for this long.
	SessionIdleTimeout time.Duration `env:"MURDERAI_SESSION_IDLE_TIMEOUT" envDefault:"2h"`
	// JanitorInterval is how often idle games are looked for.
	JanitorInterval time.Duration `env:"MURDERAI_JANITOR_INTERVAL" envDefault:"5m"`
	// PprofAddr enables a loopback pprof listener when set, e.g. "localhost:6060".
	PprofAddr string `env:"MURDERAI_PPROF_ADDR"`
	// SecureCookies marks session and CSRF cookies Secure.
	SecureCookies bool `env:"MURDERAI_SECURE_COOKIES" envDefault:"true"`
	// StrictBudget refuses tools that cost more than the remaining points.
	StrictBudget bool `env:"MURDERAI_STRICT_BUDGET" envDefault:"false"`

	OpenAI OpenAI
}

// OpenAI configures the dialogue gateway. Without an API key the game runs in offline mode.
type OpenAI struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL"`
	Model   string `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo-1106"`
}

// Offline reports whether dialogue should be served without a language model.
func (o OpenAI) Offline() bool {
	return o.APIKey == ""
}

var ErrInvalidConfig = errors.NewSentinel("invalid configuration")

// Load parses the configuration from environ, which has the format of [os.Environ].
func Load(environ []string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: env.ToMap(environ)}); err != nil { //nolint:exhaustruct // defaults are fine
		return Config{}, errors.Wrap(err, "parse environment")
	}
	if cfg.SessionIdleTimeout <= 0 {
		return Config{}, errors.Wrap(ErrInvalidConfig, "session idle timeout must be positive",
			slog.Duration("timeout", cfg.SessionIdleTimeout))
	}
	if cfg.JanitorInterval <= 0 {
		return Config{}, errors.Wrap(ErrInvalidConfig, "janitor interval must be positive",
			slog.Duration("interval", cfg.JanitorInterval))
	}
	return cfg, nil
}
