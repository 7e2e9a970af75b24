// Package logger builds the zap loggers used across the engine's
// subsystems. Every constructor in this package returns a
// *zap.SugaredLogger tagged with the calling service name, matching the
// structured-logging convention the rest of the module expects from its
// constructors (Config.Logger fields, not package-level globals).
package logger

import (
	"go.uber.org/zap"
)

// New builds a production-profile logger tagged with service. Production
// config emits JSON, samples high-frequency identical log lines, and
// includes caller/stacktrace information on error level and above.
func New(service string) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return base.Sugar().With("service", service), nil
}

// NewDevelopment builds a human-readable, unsampled logger suitable for
// local development and CLI tools.
func NewDevelopment(service string) (*zap.SugaredLogger, error) {
	base, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return base.Sugar().With("service", service), nil
}

// Nop returns a logger that discards everything. Used as the default in
// tests and anywhere a caller does not supply one.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
