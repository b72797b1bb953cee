package bridge

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
)

// GoFunc is the low-level shape of a native function: raw engine context
// handle plus raw argument handles in, one raw result handle out. Typed
// validation happens a layer up, in vm.
type GoFunc func(ctxPtr uint32, args []uint32) uint32

type callbackRegistry struct {
	mu     sync.RWMutex
	funcs  map[uint32]GoFunc
	nextID uint32
}

func newCallbackRegistry() *callbackRegistry {
	return &callbackRegistry{funcs: make(map[uint32]GoFunc), nextID: 1}
}

func (r *callbackRegistry) register(fn GoFunc) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.funcs[id] = fn
	return id
}

func (r *callbackRegistry) get(id uint32) (GoFunc, bool) {
	r.mu.RLock()
	fn, ok := r.funcs[id]
	r.mu.RUnlock()
	return fn, ok
}

func (r *callbackRegistry) unregister(id uint32) {
	r.mu.Lock()
	delete(r.funcs, id)
	r.mu.Unlock()
}

func (r *callbackRegistry) clear() {
	r.mu.Lock()
	r.funcs = make(map[uint32]GoFunc)
	r.mu.Unlock()
}

// RegisterFunc registers a Go callback and returns the id to pass to
// NewCFunction.
func (b *Bridge) RegisterFunc(fn GoFunc) uint32 {
	return b.callbacks.register(fn)
}

// UnregisterFunc removes a registered callback. Script calls to a function
// value whose callback is gone resolve to undefined.
func (b *Bridge) UnregisterFunc(id uint32) {
	b.callbacks.unregister(id)
}

// maxCallbackArgs bounds the argument vector a script call may hand across
// the boundary. Anything larger is treated as malformed input.
const maxCallbackArgs = 1 << 16

// hostCallGo is the env.host_call_go import: the engine invokes it when
// script calls a function created by NewCFunction. The argument vector is an
// array of value handles in linear memory.
func (b *Bridge) hostCallGo(ctx context.Context, m api.Module, ctxPtr, funcID uint32, argc int32, argvPtr uint32) uint32 {
	fn, ok := b.callbacks.get(funcID)
	if !ok {
		b.logger.Warn("call to unregistered native function", zap.Uint32("func_id", funcID))
		return b.mustUndefined(ctx)
	}
	if argc < 0 || argc > maxCallbackArgs {
		b.logger.Warn("native call argument count out of range", zap.Int32("argc", argc))
		return b.mustUndefined(ctx)
	}

	args := make([]uint32, 0, argc)
	if argc > 0 && argvPtr != 0 {
		buf, ok := m.Memory().Read(argvPtr, uint32(argc)*4)
		if !ok {
			b.logger.Warn("native call argument vector out of bounds",
				zap.Uint32("argv", argvPtr), zap.Int32("argc", argc))
			return b.mustUndefined(ctx)
		}
		for i := int32(0); i < argc; i++ {
			args = append(args, binary.LittleEndian.Uint32(buf[i*4:]))
		}
	}

	return fn(ctxPtr, args)
}

func (b *Bridge) mustUndefined(ctx context.Context) uint32 {
	undef, err := b.NewUndefined(ctx)
	if err != nil {
		return 0
	}
	return undef
}
