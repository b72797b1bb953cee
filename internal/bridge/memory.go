package bridge

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
)

// maxCStringLen bounds how much linear memory ReadCString scans for the
// terminating NUL. Engine strings longer than this are truncated.
const maxCStringLen = 1 << 16

// Alloc reserves size bytes on the engine's scratch heap.
func (b *Bridge) Alloc(ctx context.Context, size uint32) (uint32, error) {
	results, err := b.fnAlloc.Call(ctx, uint64(size))
	if err != nil {
		return 0, err
	}
	ptr := uint32(results[0])
	if ptr == 0 {
		return 0, errors.New("engine allocation failed")
	}
	return ptr, nil
}

// free returns scratch memory to the engine heap. Failures are ignored;
// leaked scratch is reclaimed when the instance goes away.
func (b *Bridge) free(ctx context.Context, ptr uint32) {
	if ptr != 0 {
		_, _ = b.fnFree.Call(ctx, uint64(ptr))
	}
}

// WriteString copies s into linear memory as a NUL-terminated C string and
// returns its pointer.
func (b *Bridge) WriteString(ctx context.Context, s string) (uint32, error) {
	ptr, err := b.Alloc(ctx, uint32(len(s)+1))
	if err != nil {
		return 0, err
	}
	data := make([]byte, len(s)+1)
	copy(data, s)
	if !b.memory.Write(ptr, data) {
		b.free(ctx, ptr)
		return 0, errors.New("write string to engine memory")
	}
	return ptr, nil
}

// ReadCString reads a NUL-terminated string starting at ptr.
func (b *Bridge) ReadCString(ptr uint32) string {
	limit := uint32(maxCStringLen)
	if size := b.memory.Size(); ptr < size && size-ptr < limit {
		limit = size - ptr
	}
	buf, ok := b.memory.Read(ptr, limit)
	if !ok {
		return ""
	}
	if idx := bytes.IndexByte(buf, 0); idx >= 0 {
		return string(buf[:idx])
	}
	return string(buf)
}

func (b *Bridge) readUint32(ptr uint32) (uint32, error) {
	buf, ok := b.memory.Read(ptr, 4)
	if !ok {
		return 0, errors.New("read result from engine memory")
	}
	return binary.LittleEndian.Uint32(buf), nil
}
