package engine

import (
	"time"

	"go.uber.org/zap"
)

// Option configures an Engine.
type Option func(*config)

type config struct {
	clock             func() time.Time
	retainOnFailure   bool
	logger            *zap.Logger
	emptyIsWhitespace bool
}

func defaultConfig() config {
	return config{
		clock:  time.Now,
		logger: zap.NewNop(),
	}
}

// WithClock overrides the time source used for submission timestamps and
// export filenames.
func WithClock(clock func() time.Time) Option {
	return func(cfg *config) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

// WithRetainSnapshotOnFailure keeps the previous snapshot when a later submit
// fails validation. By default a failed submit clears it, so a snapshot only
// exists while the most recent submit passed.
func WithRetainSnapshotOnFailure(retain bool) Option {
	return func(cfg *config) {
		cfg.retainOnFailure = retain
	}
}

// WithTrimmedEmptiness treats whitespace-only text as empty when checking
// required fields. Disabled by default: any non-empty string satisfies a
// required field.
func WithTrimmedEmptiness(enabled bool) Option {
	return func(cfg *config) {
		cfg.emptyIsWhitespace = enabled
	}
}

// WithLogger attaches a logger for lifecycle events.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}
