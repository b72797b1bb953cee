package bridge

import (
	"context"
	"errors"
	"math"
)

// The calls below mirror the engine's export signatures one to one. Engine
// handles travel as uint32 offsets; a zero return from a creation call means
// the engine could not allocate.

func (b *Bridge) NewRuntime(ctx context.Context) (uint32, error) {
	results, err := b.fnNewRuntime.Call(ctx)
	if err != nil {
		return 0, err
	}
	rt := uint32(results[0])
	if rt == 0 {
		return 0, errors.New("engine runtime allocation failed")
	}
	return rt, nil
}

func (b *Bridge) FreeRuntime(ctx context.Context, rtPtr uint32) error {
	_, err := b.fnFreeRuntime.Call(ctx, uint64(rtPtr))
	return err
}

func (b *Bridge) NewContext(ctx context.Context, rtPtr uint32) (uint32, error) {
	results, err := b.fnNewContext.Call(ctx, uint64(rtPtr))
	if err != nil {
		return 0, err
	}
	c := uint32(results[0])
	if c == 0 {
		return 0, errors.New("engine context allocation failed")
	}
	return c, nil
}

func (b *Bridge) FreeContext(ctx context.Context, ctxPtr uint32) error {
	_, err := b.fnFreeContext.Call(ctx, uint64(ctxPtr))
	return err
}

// AddConsole installs console.log and print into the context's global scope,
// routed through the host_log import.
func (b *Bridge) AddConsole(ctx context.Context, ctxPtr uint32) error {
	_, err := b.fnAddConsole.Call(ctx, uint64(ctxPtr))
	return err
}

// Eval compiles and runs src in the given context. The returned handle may
// be the engine's exception marker; the caller decides via IsException.
func (b *Bridge) Eval(ctx context.Context, ctxPtr uint32, src, filename string, flags int32) (uint32, error) {
	srcPtr, err := b.WriteString(ctx, src)
	if err != nil {
		return 0, err
	}
	defer b.free(ctx, srcPtr)
	var namePtr uint32
	if filename != "" {
		if namePtr, err = b.WriteString(ctx, filename); err != nil {
			return 0, err
		}
		defer b.free(ctx, namePtr)
	}
	results, err := b.fnEval.Call(ctx, uint64(ctxPtr), uint64(srcPtr), uint64(len(src)), uint64(namePtr), uint64(uint32(flags)))
	if err != nil {
		return 0, err
	}
	return uint32(results[0]), nil
}

func (b *Bridge) GetGlobalObject(ctx context.Context, ctxPtr uint32) (uint32, error) {
	results, err := b.fnGetGlobalObject.Call(ctx, uint64(ctxPtr))
	if err != nil {
		return 0, err
	}
	return uint32(results[0]), nil
}

func (b *Bridge) GetProperty(ctx context.Context, ctxPtr, objPtr uint32, name string) (uint32, error) {
	namePtr, err := b.WriteString(ctx, name)
	if err != nil {
		return 0, err
	}
	defer b.free(ctx, namePtr)
	results, err := b.fnGetProperty.Call(ctx, uint64(ctxPtr), uint64(objPtr), uint64(namePtr))
	if err != nil {
		return 0, err
	}
	return uint32(results[0]), nil
}

// SetProperty writes a named property. The engine takes ownership of valPtr
// on success.
func (b *Bridge) SetProperty(ctx context.Context, ctxPtr, objPtr uint32, name string, valPtr uint32) error {
	namePtr, err := b.WriteString(ctx, name)
	if err != nil {
		return err
	}
	defer b.free(ctx, namePtr)
	results, err := b.fnSetProperty.Call(ctx, uint64(ctxPtr), uint64(objPtr), uint64(namePtr), uint64(valPtr))
	if err != nil {
		return err
	}
	if int32(uint32(results[0])) < 0 {
		return errors.New("engine rejected property write")
	}
	return nil
}

// ToInt32 coerces a value to int32 via an out parameter on the engine heap.
// A non-zero status means the coercion threw.
func (b *Bridge) ToInt32(ctx context.Context, ctxPtr, valPtr uint32) (int32, error) {
	outPtr, err := b.Alloc(ctx, 4)
	if err != nil {
		return 0, err
	}
	defer b.free(ctx, outPtr)
	results, err := b.fnToInt32.Call(ctx, uint64(ctxPtr), uint64(valPtr), uint64(outPtr))
	if err != nil {
		return 0, err
	}
	if int32(uint32(results[0])) != 0 {
		return 0, errors.New("int32 coercion threw")
	}
	out, err := b.readUint32(outPtr)
	if err != nil {
		return 0, err
	}
	return int32(out), nil
}

// ToCString coerces a value to its string form. The returned pointer is an
// engine-owned C string that must be released with FreeCString.
func (b *Bridge) ToCString(ctx context.Context, ctxPtr, valPtr uint32) (uint32, error) {
	results, err := b.fnToCString.Call(ctx, uint64(ctxPtr), uint64(valPtr))
	if err != nil {
		return 0, err
	}
	strPtr := uint32(results[0])
	if strPtr == 0 {
		return 0, errors.New("string coercion threw")
	}
	return strPtr, nil
}

func (b *Bridge) FreeCString(ctx context.Context, ctxPtr, strPtr uint32) error {
	_, err := b.fnFreeCString.Call(ctx, uint64(ctxPtr), uint64(strPtr))
	return err
}

func (b *Bridge) NewUndefined(ctx context.Context) (uint32, error) {
	results, err := b.fnNewUndefined.Call(ctx)
	if err != nil {
		return 0, err
	}
	return uint32(results[0]), nil
}

func (b *Bridge) NewInt32(ctx context.Context, val int32) (uint32, error) {
	results, err := b.fnNewInt32.Call(ctx, uint64(uint32(val)))
	if err != nil {
		return 0, err
	}
	return uint32(results[0]), nil
}

func (b *Bridge) NewInt64(ctx context.Context, ctxPtr uint32, val int64) (uint32, error) {
	results, err := b.fnNewInt64.Call(ctx, uint64(ctxPtr), uint64(val))
	if err != nil {
		return 0, err
	}
	return uint32(results[0]), nil
}

func (b *Bridge) NewFloat64(ctx context.Context, val float64) (uint32, error) {
	results, err := b.fnNewFloat64.Call(ctx, math.Float64bits(val))
	if err != nil {
		return 0, err
	}
	return uint32(results[0]), nil
}

func (b *Bridge) NewBigInt64(ctx context.Context, ctxPtr uint32, val int64) (uint32, error) {
	results, err := b.fnNewBigInt64.Call(ctx, uint64(ctxPtr), uint64(val))
	if err != nil {
		return 0, err
	}
	return uint32(results[0]), nil
}

func (b *Bridge) NewBigUint64(ctx context.Context, ctxPtr uint32, val uint64) (uint32, error) {
	results, err := b.fnNewBigUint64.Call(ctx, uint64(ctxPtr), val)
	if err != nil {
		return 0, err
	}
	return uint32(results[0]), nil
}

// NewCFunction creates an engine function value that dispatches to the
// registered Go callback funcID when called from script.
func (b *Bridge) NewCFunction(ctx context.Context, ctxPtr, funcID uint32, name string, arity int32) (uint32, error) {
	namePtr, err := b.WriteString(ctx, name)
	if err != nil {
		return 0, err
	}
	defer b.free(ctx, namePtr)
	results, err := b.fnNewCFunction.Call(ctx, uint64(ctxPtr), uint64(funcID), uint64(namePtr), uint64(uint32(arity)))
	if err != nil {
		return 0, err
	}
	return uint32(results[0]), nil
}

func (b *Bridge) IsException(ctx context.Context, valPtr uint32) (bool, error) {
	results, err := b.fnIsException.Call(ctx, uint64(valPtr))
	if err != nil {
		return false, err
	}
	return results[0] != 0, nil
}

// GetException pops the context's pending exception as an owned value.
func (b *Bridge) GetException(ctx context.Context, ctxPtr uint32) (uint32, error) {
	results, err := b.fnGetException.Call(ctx, uint64(ctxPtr))
	if err != nil {
		return 0, err
	}
	return uint32(results[0]), nil
}

// Throw raises valPtr as the pending exception, taking ownership of it, and
// returns the engine's exception marker.
func (b *Bridge) Throw(ctx context.Context, ctxPtr, valPtr uint32) (uint32, error) {
	results, err := b.fnThrow.Call(ctx, uint64(ctxPtr), uint64(valPtr))
	if err != nil {
		return 0, err
	}
	return uint32(results[0]), nil
}

func (b *Bridge) FreeValue(ctx context.Context, ctxPtr, valPtr uint32) error {
	_, err := b.fnFreeValue.Call(ctx, uint64(ctxPtr), uint64(valPtr))
	return err
}
