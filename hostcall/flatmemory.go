package hostcall

// FlatMemory is a flat, growable byte-buffer implementation of Memory,
// the shared argument/scratch region a VM invocation and its host calls
// read and write through (spec.md §6 "shared argument buffer, memory").
// It is not part of the host-call contract itself — the VM supplies its
// own Memory — but gives exec and tests a ready concrete implementation
// without depending on a real VM (spec.md §1 places the VM out of scope).
type FlatMemory struct {
	buf []byte
}

// NewFlatMemory returns a zeroed buffer of the given size.
func NewFlatMemory(size int) *FlatMemory {
	return &FlatMemory{buf: make([]byte, size)}
}

// Read returns a copy of buf[ptr:ptr+length]; ok is false out of bounds.
func (m *FlatMemory) Read(ptr, length uint64) ([]byte, bool) {
	if ptr+length > uint64(len(m.buf)) || ptr+length < ptr {
		return nil, false
	}
	out := make([]byte, length)
	copy(out, m.buf[ptr:ptr+length])
	return out, true
}

// Write copies data into buf starting at ptr; ok is false out of bounds.
func (m *FlatMemory) Write(ptr uint64, data []byte) bool {
	end := ptr + uint64(len(data))
	if end > uint64(len(m.buf)) || end < ptr {
		return false
	}
	copy(m.buf[ptr:end], data)
	return true
}

// Bytes exposes the underlying buffer, used by argument-assembly helpers
// that need to seed memory directly before an invocation starts.
func (m *FlatMemory) Bytes() []byte { return m.buf }
