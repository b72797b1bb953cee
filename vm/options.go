package vm

import "go.uber.org/zap"

// Option configures a Runtime at creation time.
type Option func(*runtimeConfig)

type runtimeConfig struct {
	logger           *zap.Logger
	console          func(string)
	memoryLimitPages uint32
}

func defaultRuntimeConfig() runtimeConfig {
	return runtimeConfig{}
}

// WithLogger sets the logger used for engine diagnostics and for script
// exceptions reported by TryEval. Default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *runtimeConfig) {
		c.logger = logger
	}
}

// WithConsole routes console.log and print output from scripts to fn instead
// of the logger.
func WithConsole(fn func(string)) Option {
	return func(c *runtimeConfig) {
		c.console = fn
	}
}

// WithMemoryLimit sets the maximum memory available to the engine instance.
// Each page is 64KB. Default is 0 (wazero default, up to 4GB).
func WithMemoryLimit(pages uint32) Option {
	return func(c *runtimeConfig) {
		c.memoryLimitPages = pages
	}
}

// Memory limit constants for convenience.
const (
	MemoryLimit16MB  uint32 = 256
	MemoryLimit64MB  uint32 = 1024
	MemoryLimit256MB uint32 = 4096
)
