package vm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/quixjs/quix/internal/bridge"
)

// Runtime owns one engine instance: the WASM module hosting the JavaScript
// engine plus the engine-level runtime allocated inside it. Runtimes are
// independent of each other; there is no process-wide engine state.
//
// A Runtime and everything derived from it must be used from one goroutine
// at a time. The engine is not reentrant; callers who share a Runtime across
// goroutines need external locking.
type Runtime struct {
	br       *bridge.Bridge
	goCtx    context.Context
	handle   uint32
	logger   *zap.Logger
	released bool
}

// NewRuntime instantiates the engine module and allocates a runtime in it.
func NewRuntime(opts ...Option) (*Runtime, error) {
	return NewRuntimeWithContext(context.Background(), opts...)
}

// NewRuntimeWithContext is NewRuntime with a caller-supplied context for the
// underlying WASM calls. Cancelling it aborts in-flight evaluation.
func NewRuntimeWithContext(ctx context.Context, opts ...Option) (*Runtime, error) {
	cfg := defaultRuntimeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	br, err := bridge.New(ctx, bridge.Config{
		Logger:           logger,
		Console:          cfg.console,
		MemoryLimitPages: cfg.memoryLimitPages,
	})
	if err != nil {
		return nil, fmt.Errorf("start engine: %w", err)
	}

	handle, err := br.NewRuntime(ctx)
	if err != nil {
		br.Close(ctx)
		return nil, fmt.Errorf("create runtime: %w", err)
	}

	return &Runtime{
		br:     br,
		goCtx:  ctx,
		handle: handle,
		logger: logger,
	}, nil
}

// Close frees the engine runtime and shuts down the engine instance. Every
// Context created from this Runtime must be closed first; using one
// afterwards reports ErrInvalidHandle. A second Close reports
// ErrDoubleRelease without touching the engine again.
func (r *Runtime) Close() error {
	if r.released {
		return ErrDoubleRelease
	}
	r.released = true

	var errs []error
	if err := r.br.FreeRuntime(r.goCtx, r.handle); err != nil {
		errs = append(errs, fmt.Errorf("free runtime: %w", err))
	}
	if err := r.br.Close(r.goCtx); err != nil {
		errs = append(errs, fmt.Errorf("close engine: %w", err))
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// NewContext creates an execution context bound to this Runtime. The context
// comes with console.log and print installed, routed to the Runtime's
// console sink.
func (r *Runtime) NewContext() (*Context, error) {
	if r.released {
		return nil, ErrInvalidHandle
	}

	handle, err := r.br.NewContext(r.goCtx, r.handle)
	if err != nil {
		return nil, fmt.Errorf("create context: %w", err)
	}

	if err := r.br.AddConsole(r.goCtx, handle); err != nil {
		_ = r.br.FreeContext(r.goCtx, handle)
		return nil, fmt.Errorf("install console: %w", err)
	}

	return &Context{rt: r, handle: handle}, nil
}
