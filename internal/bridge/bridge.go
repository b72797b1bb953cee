// Package bridge hosts the QuickJS WASM engine via wazero and exposes its
// exported qjs_* functions as typed Go calls.
//
// Each Bridge owns one wazero runtime and one instance of the engine module.
// All pointers handed out by the engine (runtimes, contexts, values, C
// strings) are offsets into the instance's linear memory; they are only
// meaningful against the Bridge that produced them.
package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	quickjswasm "github.com/Gaurav-Gosain/quickjs/wasm"
)

// Config controls how the engine instance is created.
type Config struct {
	// Logger receives diagnostics and, when Console is nil, console output
	// from evaluated scripts. Nil means zap.NewNop().
	Logger *zap.Logger

	// Console receives console.log/print output from evaluated scripts via
	// the engine's host_log import. Nil routes output to Logger.
	Console func(string)

	// MemoryLimitPages caps the instance's linear memory (64KB pages).
	// 0 uses the wazero default.
	MemoryLimitPages uint32
}

// Bridge wraps one instantiated engine module.
type Bridge struct {
	wasmRuntime wazero.Runtime
	module      api.Module
	memory      api.Memory
	logger      *zap.Logger
	console     func(string)
	callbacks   *callbackRegistry

	fnAlloc           api.Function
	fnFree            api.Function
	fnNewRuntime      api.Function
	fnFreeRuntime     api.Function
	fnNewContext      api.Function
	fnFreeContext     api.Function
	fnEval            api.Function
	fnGetGlobalObject api.Function
	fnGetProperty     api.Function
	fnSetProperty     api.Function
	fnToInt32         api.Function
	fnToCString       api.Function
	fnFreeCString     api.Function
	fnNewUndefined    api.Function
	fnNewInt32        api.Function
	fnNewInt64        api.Function
	fnNewFloat64      api.Function
	fnNewBigInt64     api.Function
	fnNewBigUint64    api.Function
	fnNewCFunction    api.Function
	fnIsException     api.Function
	fnGetException    api.Function
	fnThrow           api.Function
	fnFreeValue       api.Function
	fnAddConsole      api.Function
}

// New compiles and instantiates the engine module.
func New(ctx context.Context, cfg Config) (*Bridge, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &Bridge{
		logger:    logger,
		console:   cfg.Console,
		callbacks: newCallbackRegistry(),
	}

	rtConfig := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if cfg.MemoryLimitPages > 0 {
		rtConfig = rtConfig.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	b.wasmRuntime = wazero.NewRuntimeWithConfig(ctx, rtConfig)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, b.wasmRuntime); err != nil {
		b.wasmRuntime.Close(ctx)
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}

	// The engine module imports env.host_log for console output and
	// env.host_call_go for native function dispatch.
	_, err := b.wasmRuntime.NewHostModuleBuilder("env").
		NewFunctionBuilder().
		WithFunc(b.hostLog).
		Export("host_log").
		NewFunctionBuilder().
		WithFunc(b.hostCallGo).
		Export("host_call_go").
		Instantiate(ctx)
	if err != nil {
		b.wasmRuntime.Close(ctx)
		return nil, fmt.Errorf("instantiate host module: %w", err)
	}

	compiled, err := b.wasmRuntime.CompileModule(ctx, quickjswasm.QuickJS)
	if err != nil {
		b.wasmRuntime.Close(ctx)
		return nil, fmt.Errorf("compile engine module: %w", err)
	}

	b.module, err = b.wasmRuntime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		b.wasmRuntime.Close(ctx)
		return nil, fmt.Errorf("instantiate engine module: %w", err)
	}

	b.memory = b.module.Memory()
	if b.memory == nil {
		b.wasmRuntime.Close(ctx)
		return nil, errors.New("engine module has no memory")
	}

	if err := b.resolveExports(); err != nil {
		b.wasmRuntime.Close(ctx)
		return nil, err
	}

	return b, nil
}

func (b *Bridge) resolveExports() error {
	for _, e := range []struct {
		name string
		fn   *api.Function
	}{
		{"qjs_alloc", &b.fnAlloc},
		{"qjs_free", &b.fnFree},
		{"qjs_new_runtime", &b.fnNewRuntime},
		{"qjs_free_runtime", &b.fnFreeRuntime},
		{"qjs_new_context", &b.fnNewContext},
		{"qjs_free_context", &b.fnFreeContext},
		{"qjs_eval", &b.fnEval},
		{"qjs_get_global_object", &b.fnGetGlobalObject},
		{"qjs_get_property", &b.fnGetProperty},
		{"qjs_set_property", &b.fnSetProperty},
		{"qjs_to_int32", &b.fnToInt32},
		{"qjs_to_cstring", &b.fnToCString},
		{"qjs_free_cstring", &b.fnFreeCString},
		{"qjs_new_undefined", &b.fnNewUndefined},
		{"qjs_new_int32", &b.fnNewInt32},
		{"qjs_new_int64", &b.fnNewInt64},
		{"qjs_new_float64", &b.fnNewFloat64},
		{"qjs_new_big_int64", &b.fnNewBigInt64},
		{"qjs_new_big_uint64", &b.fnNewBigUint64},
		{"qjs_new_c_function", &b.fnNewCFunction},
		{"qjs_is_exception", &b.fnIsException},
		{"qjs_get_exception", &b.fnGetException},
		{"qjs_throw", &b.fnThrow},
		{"qjs_free_value", &b.fnFreeValue},
		{"qjs_std_add_console", &b.fnAddConsole},
	} {
		fn := b.module.ExportedFunction(e.name)
		if fn == nil {
			return fmt.Errorf("engine module does not export %s", e.name)
		}
		*e.fn = fn
	}
	return nil
}

// Close shuts down the wazero runtime and with it the engine instance.
func (b *Bridge) Close(ctx context.Context) error {
	b.callbacks.clear()
	return b.wasmRuntime.Close(ctx)
}

// hostLog delivers console output from evaluated scripts.
func (b *Bridge) hostLog(_ context.Context, m api.Module, bufPtr, bufLen uint32) {
	buf, ok := m.Memory().Read(bufPtr, bufLen)
	if !ok {
		return
	}
	if b.console != nil {
		b.console(string(buf))
		return
	}
	b.logger.Info("console", zap.String("output", string(buf)))
}
