package piece

import "log/slog"

// config holds per-instance settings. Children inherit their parent's
// config before their own options apply.
type config struct {
	logger     *slog.Logger
	ids        *IDSource
	bestEffort bool
	parallel   bool
}

func defaultConfig() config {
	return config{
		logger: slog.New(slog.DiscardHandler),
		ids:    defaultIDs,
	}
}

// Option configures an Instance.
type Option func(*config)

// WithLogger sets the logger receiving debug records for lifecycle events.
// Nil restores the discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		c.logger = l
	}
}

// WithIDSource sets the source of instance identifiers.
// Nil restores the process-wide source.
func WithIDSource(s *IDSource) Option {
	return func(c *config) {
		if s == nil {
			s = defaultIDs
		}
		c.ids = s
	}
}

// WithBestEffortUnmount makes Unmount continue past failing children and
// teardowns. All failures are returned together via errors.Join.
// Without it, the first failure stops the unmount.
func WithBestEffortUnmount() Option {
	return func(c *config) {
		c.bestEffort = true
	}
}

// WithParallelUnmount makes Unmount tear down sibling children
// concurrently. Children and their teardowns must then tolerate running
// in parallel, and the order in which siblings finish is unspecified.
func WithParallelUnmount() Option {
	return func(c *config) {
		c.parallel = true
	}
}
