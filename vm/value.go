package vm

import "fmt"

// Value is a handle to one engine-managed datum. Values obtained from Eval,
// GlobalObject, GetProperty, the constructors, and NewFunction are owned by
// the caller and must be released exactly once, unless ownership was
// transferred away by SetProperty or Throw.
type Value struct {
	ctx      *Context
	handle   uint32
	released bool
}

// Release frees the engine reference behind v. A second Release reports
// ErrDoubleRelease; Release after the owning context is gone reports
// ErrInvalidHandle without re-entering the engine.
func (v *Value) Release() error {
	if v == nil || v.ctx == nil {
		return ErrInvalidHandle
	}
	if v.released {
		return ErrDoubleRelease
	}
	v.released = true

	if v.ctx.released || v.ctx.rt.released {
		return ErrInvalidHandle
	}
	if err := v.ctx.rt.br.FreeValue(v.ctx.rt.goCtx, v.ctx.handle, v.handle); err != nil {
		return fmt.Errorf("free value: %w", err)
	}
	return nil
}

// IsException reports whether v is the engine's exception marker. It is a
// non-owning query and never fails; on a released or invalid handle it
// returns false.
func (v *Value) IsException() bool {
	if v == nil || v.ctx == nil || v.released {
		return false
	}
	if v.ctx.released || v.ctx.rt.released {
		return false
	}
	exc, err := v.ctx.rt.br.IsException(v.ctx.rt.goCtx, v.handle)
	if err != nil {
		return false
	}
	return exc
}

// CString is an engine-owned, NUL-terminated byte sequence borrowed from a
// string coercion. The text is copied out of engine memory at creation; the
// underlying engine string still has to be released exactly once.
type CString struct {
	ctx      *Context
	ptr      uint32
	text     string
	released bool
}

// String returns the borrowed text. Valid even after Release; the copy is
// host-owned.
func (s *CString) String() string { return s.text }

// Release returns the borrowed string to the owning context. Same release
// discipline as Value: ErrDoubleRelease on repeat, ErrInvalidHandle when the
// context is gone.
func (s *CString) Release() error {
	if s == nil || s.ctx == nil {
		return ErrInvalidHandle
	}
	if s.released {
		return ErrDoubleRelease
	}
	s.released = true

	if s.ctx.released || s.ctx.rt.released {
		return ErrInvalidHandle
	}
	if err := s.ctx.rt.br.FreeCString(s.ctx.rt.goCtx, s.ctx.handle, s.ptr); err != nil {
		return fmt.Errorf("free cstring: %w", err)
	}
	return nil
}
