package vm

import "go.uber.org/zap"

// EvalFlag selects the evaluation mode. The bit values are the engine's own
// and pass through Eval unchanged.
type EvalFlag int32

const (
	// EvalGlobal evaluates in the global scope with default semantics.
	EvalGlobal EvalFlag = 0
	// EvalStrict forces strict mode.
	EvalStrict EvalFlag = 1 << 3
	// EvalStrip omits debug information from compiled bytecode.
	EvalStrip EvalFlag = 1 << 4
	// EvalBacktraceBarrier hides the caller's frames from backtraces.
	EvalBacktraceBarrier EvalFlag = 1 << 6
	// EvalAsync evaluates the source as if wrapped in an async function,
	// allowing top-level await.
	EvalAsync EvalFlag = 1 << 7
)

// TryEval evaluates one source unit under EvalAsync, labelled "<input>".
// On success the result value is released; any data the script produced is
// read back through context properties. If the script raised, the exception
// is rendered to text, logged through the runtime's logger, and returned as
// an *EvalError.
func TryEval(ctx *Context, src string) error {
	result, err := ctx.Eval(src, "<input>", EvalAsync)
	if err != nil {
		return err
	}

	if result.IsException() {
		msg := ctx.exceptionText()
		ctx.rt.logger.Error("script exception", zap.String("error", msg))
		return &EvalError{Message: msg}
	}

	if err := result.Release(); err != nil {
		ctx.rt.logger.Warn("release eval result", zap.Error(err))
	}
	return nil
}
