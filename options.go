package csp

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type config struct {
	logger *zap.Logger
	id     uuid.UUID
}

// Option configures a Scheduler.
type Option func(*config)

func defaultConfig() config {
	return config{
		logger: zap.NewNop(),
		id:     uuid.New(),
	}
}

// WithLogger sets the logger the scheduler and everything built on it
// reports to. Scheduling events are logged at debug level, deadlocks
// and task failures at error level. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithID overrides the scheduler's identity, which is attached to every
// log line as the "scheduler" field. By default a random UUID is used.
func WithID(id uuid.UUID) Option {
	return func(c *config) {
		c.id = id
	}
}
