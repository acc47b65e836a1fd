// Package app provides the application context and dependency management
// for the specsync CLI. It centralizes configuration, logging, and
// generator construction for the commands.
package app

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/specsync/internal/generation"
	"github.com/agentstation/specsync/internal/generation/gemini"
	"github.com/agentstation/specsync/internal/generation/runllm"
	"github.com/agentstation/specsync/pkg/errors"
)

// App represents the specsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Generator builds the configured generation backend. The runllm backend
// also acts as a run tracker; gemini does not.
func (a *App) Generator() (generation.Generator, generation.RunTracker, error) {
	switch a.config.Backend {
	case "runllm", "":
		if a.config.ServerAddress == "" {
			return nil, nil, &errors.ConfigError{
				Component: "runllm",
				Message:   "server address is required",
			}
		}
		client := runllm.New(a.config.ServerAddress, a.config.APIKey, a.config.RepoName)
		return client, client, nil

	case "gemini":
		var opts []gemini.Option
		if a.config.Model != "" {
			opts = append(opts, gemini.WithModel(a.config.Model))
		}
		if a.config.APIKey != "" {
			opts = append(opts, gemini.WithAPIKey(a.config.APIKey))
		}
		return gemini.New(opts...), nil, nil

	default:
		return nil, nil, &errors.ConfigError{
			Component: "backend",
			Message:   "unknown backend " + a.config.Backend + " (expected runllm or gemini)",
		}
	}
}

// RunTracker returns a runllm-backed tracker for run lifecycle commands.
func (a *App) RunTracker() (generation.RunTracker, error) {
	if a.config.ServerAddress == "" {
		return nil, &errors.ConfigError{
			Component: "runllm",
			Message:   "server address is required",
		}
	}
	return runllm.New(a.config.ServerAddress, a.config.APIKey, a.config.RepoName), nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
