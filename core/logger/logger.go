// Package logger declares the logging contract shared by core packages.
// Adapters live in infra/logger.
package logger

// Logger is a levelled, component scoped logger.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw attaches fields as structured keys instead of formatting them.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
