package internal

import "log/slog"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config     *Config
	configPath string
	logLevel   *slog.LevelVar
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithConfigPath enables hot reload of the log level from the given file.
func WithConfigPath(path string) Option {
	return func(a *application) {
		a.configPath = path
	}
}
