package vm

import (
	"fmt"
)

// Context is one execution environment (global scope) within a Runtime. All
// Values and CStrings it produces are owned by it and must be released
// before the Context, which in turn must be closed before its Runtime.
type Context struct {
	rt       *Runtime
	handle   uint32
	funcIDs  []uint32
	released bool
}

// valid runs before every engine call so a released context is reported
// instead of dereferenced.
func (c *Context) valid() error {
	if c == nil || c.released || c.rt.released {
		return ErrInvalidHandle
	}
	return nil
}

// checkValue validates a caller-supplied Value against this context.
func (c *Context) checkValue(v *Value) error {
	if v == nil || v.released || v.ctx != c {
		return ErrInvalidHandle
	}
	return nil
}

// Close frees the engine context. A second Close reports ErrDoubleRelease;
// Close after the Runtime is gone reports ErrInvalidHandle without touching
// the engine.
func (c *Context) Close() error {
	if c.released {
		return ErrDoubleRelease
	}
	c.released = true

	for _, id := range c.funcIDs {
		c.rt.br.UnregisterFunc(id)
	}
	c.funcIDs = nil

	if c.rt.released {
		return ErrInvalidHandle
	}
	if err := c.rt.br.FreeContext(c.rt.goCtx, c.handle); err != nil {
		return fmt.Errorf("free context: %w", err)
	}
	return nil
}

// Eval compiles and runs src under the given flag. The returned Value may be
// the engine's exception marker; callers must query IsException before using
// it. filename labels the source unit in error messages.
func (c *Context) Eval(src, filename string, flag EvalFlag) (*Value, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	handle, err := c.rt.br.Eval(c.rt.goCtx, c.handle, src, filename, int32(flag))
	if err != nil {
		return nil, fmt.Errorf("eval %s: %w", filename, err)
	}
	return &Value{ctx: c, handle: handle}, nil
}

// GlobalObject returns the context's global object. The result is an owned
// Value and must be released like any other.
func (c *Context) GlobalObject() (*Value, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	handle, err := c.rt.br.GetGlobalObject(c.rt.goCtx, c.handle)
	if err != nil {
		return nil, fmt.Errorf("get global object: %w", err)
	}
	return &Value{ctx: c, handle: handle}, nil
}

// GetProperty reads a named property from obj. An absent property yields the
// undefined value, not an error.
func (c *Context) GetProperty(obj *Value, name string) (*Value, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	if err := c.checkValue(obj); err != nil {
		return nil, err
	}
	handle, err := c.rt.br.GetProperty(c.rt.goCtx, c.handle, obj.handle, name)
	if err != nil {
		return nil, fmt.Errorf("get property %q: %w", name, err)
	}
	return &Value{ctx: c, handle: handle}, nil
}

// SetProperty writes or overwrites a named property on obj. Ownership of val
// transfers to the property slot: on success val is marked released, and a
// later val.Release reports ErrDoubleRelease.
func (c *Context) SetProperty(obj *Value, name string, val *Value) error {
	if err := c.valid(); err != nil {
		return err
	}
	if err := c.checkValue(obj); err != nil {
		return err
	}
	if err := c.checkValue(val); err != nil {
		return err
	}
	if err := c.rt.br.SetProperty(c.rt.goCtx, c.handle, obj.handle, name, val.handle); err != nil {
		return fmt.Errorf("set property %q: %w", name, err)
	}
	val.released = true
	return nil
}

// ToInt32 coerces v using the engine's numeric coercion rules.
func (c *Context) ToInt32(v *Value) (int32, error) {
	if err := c.valid(); err != nil {
		return 0, err
	}
	if err := c.checkValue(v); err != nil {
		return 0, err
	}
	n, err := c.rt.br.ToInt32(c.rt.goCtx, c.handle, v.handle)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	return n, nil
}

// ToCString coerces v to its string form. The returned CString borrows
// engine memory and must be released exactly once.
func (c *Context) ToCString(v *Value) (*CString, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	if err := c.checkValue(v); err != nil {
		return nil, err
	}
	strPtr, err := c.rt.br.ToCString(c.rt.goCtx, c.handle, v.handle)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	return &CString{ctx: c, ptr: strPtr, text: c.rt.br.ReadCString(strPtr)}, nil
}

// NewInt32 constructs an integer value.
func (c *Context) NewInt32(v int32) (*Value, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	handle, err := c.rt.br.NewInt32(c.rt.goCtx, v)
	if err != nil {
		return nil, fmt.Errorf("new int32: %w", err)
	}
	return &Value{ctx: c, handle: handle}, nil
}

// NewInt64 constructs a number value from an int64.
func (c *Context) NewInt64(v int64) (*Value, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	handle, err := c.rt.br.NewInt64(c.rt.goCtx, c.handle, v)
	if err != nil {
		return nil, fmt.Errorf("new int64: %w", err)
	}
	return &Value{ctx: c, handle: handle}, nil
}

// NewUint32 constructs a number value from a uint32. The engine has no
// dedicated uint32 constructor; the value always fits in int64.
func (c *Context) NewUint32(v uint32) (*Value, error) {
	return c.NewInt64(int64(v))
}

// NewBigInt64 constructs a BigInt value from an int64.
func (c *Context) NewBigInt64(v int64) (*Value, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	handle, err := c.rt.br.NewBigInt64(c.rt.goCtx, c.handle, v)
	if err != nil {
		return nil, fmt.Errorf("new bigint64: %w", err)
	}
	return &Value{ctx: c, handle: handle}, nil
}

// NewBigUint64 constructs a BigInt value from a uint64.
func (c *Context) NewBigUint64(v uint64) (*Value, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	handle, err := c.rt.br.NewBigUint64(c.rt.goCtx, c.handle, v)
	if err != nil {
		return nil, fmt.Errorf("new biguint64: %w", err)
	}
	return &Value{ctx: c, handle: handle}, nil
}

// NewFloat64 constructs a number value from a float64.
func (c *Context) NewFloat64(v float64) (*Value, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	handle, err := c.rt.br.NewFloat64(c.rt.goCtx, v)
	if err != nil {
		return nil, fmt.Errorf("new float64: %w", err)
	}
	return &Value{ctx: c, handle: handle}, nil
}

// Throw raises v as the context's pending exception and returns the engine's
// exception marker. Ownership of v transfers to the engine, same as
// SetProperty.
func (c *Context) Throw(v *Value) (*Value, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	if err := c.checkValue(v); err != nil {
		return nil, err
	}
	handle, err := c.rt.br.Throw(c.rt.goCtx, c.handle, v.handle)
	if err != nil {
		return nil, fmt.Errorf("throw: %w", err)
	}
	v.released = true
	return &Value{ctx: c, handle: handle}, nil
}

// Exception pops the pending exception as an owned Value. With nothing
// pending the result is the null value.
func (c *Context) Exception() (*Value, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	handle, err := c.rt.br.GetException(c.rt.goCtx, c.handle)
	if err != nil {
		return nil, fmt.Errorf("get exception: %w", err)
	}
	return &Value{ctx: c, handle: handle}, nil
}

// exceptionText drains the pending exception and renders it as text for
// error reporting. Release failures on the temporaries are swallowed; they
// must not mask the script error itself.
func (c *Context) exceptionText() string {
	exc, err := c.Exception()
	if err != nil {
		return "unknown exception"
	}
	cs, err := c.ToCString(exc)
	if err != nil {
		_ = exc.Release()
		return "unknown exception"
	}
	text := cs.String()
	_ = cs.Release()
	_ = exc.Release()
	return text
}
