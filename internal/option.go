package internal

import "github.com/halvard/skald/internal/remote"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	source remote.Source
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithRemoteSource overrides the ledger client, mainly for tests.
func WithRemoteSource(src remote.Source) Option {
	return func(a *application) {
		a.source = src
	}
}
