// Package logging provides the zap logger constructor and helpers for
// sanitizing connection strings and queries before they hit a log line.
package logging

import "go.uber.org/zap"

// New builds the process logger. The local environment gets the
// human-readable development encoder, everything else gets production
// JSON output.
func New(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
