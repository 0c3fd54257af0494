// Package logging provides structured logging for Gray Logic Remote.
//
// It wraps log/slog with the service's default attributes and maps the
// logging section of config.yaml onto handler configuration. Components
// that need to log should accept a narrow Logger interface (Debug/Info/
// Warn/Error with key-value args) rather than this concrete type, so
// tests can substitute a noop implementation.
package logging
