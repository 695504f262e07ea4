// Package logging installs the process-wide structured logger. It builds
// directly on github.com/luxfi/log the way network.go and
// cmd/dbmigrate/main.go construct one (log.New()/log.New(level), then
// log.SetDefault), rather than through a handler API that belongs to a
// different, unimportable package.
package logging

import (
	"fmt"

	luxlog "github.com/luxfi/log"
)

// Setup validates level and installs a root logger at that level, the way
// cmd/dbmigrate/main.go and network.go build a logger with
// github.com/luxfi/log's own New, then hands it to SetDefault so every
// package-level log.Info/Debug/Warn/Error/Trace/Crit call picks it up.
func Setup(level string) (luxlog.Logger, error) {
	if _, err := luxlog.ToLevel(level); err != nil {
		return nil, fmt.Errorf("logging: invalid level %q: %w", level, err)
	}

	logger := luxlog.New(level)
	luxlog.SetDefault(logger)
	return logger, nil
}

// DomainError logs one recovered domain rejection (from internal/engine) at
// error level with the structured key-value shape used throughout the
// teacher's core/txpool.go (log.Error("msg", "key", value, ...)).
func DomainError(logger luxlog.Logger, msg string, kv ...any) {
	logger.Error(msg, kv...)
}
