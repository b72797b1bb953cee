package vm

import (
	"fmt"

	"go.uber.org/zap"
)

// Func is a Go function exposed to script. It receives the owning context,
// the call's this value, and the argument list, and returns one Value. A nil
// return becomes undefined. The returned Value's ownership moves to the
// engine; argument Values are borrowed for the duration of the call.
type Func func(ctx *Context, this *Value, args []*Value) *Value

// NewFunction wraps fn into an engine-callable function value advertised
// with the given name and arity. The callback stays registered until the
// context is closed.
func (c *Context) NewFunction(name string, arity int32, fn Func) (*Value, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}

	// The engine calls back with raw handles. Validate them here, once, at
	// the boundary: reject a stale or foreign context handle instead of
	// wrapping it blindly.
	adapter := func(ctxPtr uint32, rawArgs []uint32) uint32 {
		if c.released || c.rt.released || ctxPtr != c.handle {
			c.rt.logger.Warn("native callback on invalid context",
				zap.String("func", name), zap.Uint32("ctx", ctxPtr))
			return c.rawUndefined()
		}

		args := make([]*Value, len(rawArgs))
		for i, h := range rawArgs {
			args[i] = &Value{ctx: c, handle: h}
		}
		this := &Value{ctx: c, handle: c.rawUndefined()}

		result := fn(c, this, args)
		if result == nil || result.released || result.ctx != c {
			return c.rawUndefined()
		}
		// Ownership of the result moves to the engine.
		result.released = true
		return result.handle
	}

	id := c.rt.br.RegisterFunc(adapter)
	handle, err := c.rt.br.NewCFunction(c.rt.goCtx, c.handle, id, name, arity)
	if err != nil {
		c.rt.br.UnregisterFunc(id)
		return nil, fmt.Errorf("new function %q: %w", name, err)
	}

	c.funcIDs = append(c.funcIDs, id)
	return &Value{ctx: c, handle: handle}, nil
}

func (c *Context) rawUndefined() uint32 {
	undef, err := c.rt.br.NewUndefined(c.rt.goCtx)
	if err != nil {
		return 0
	}
	return undef
}
