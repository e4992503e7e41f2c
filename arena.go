package main

// defaultMaxBufferSize bounds every buffer whose size follows from an argument
const defaultMaxBufferSize = 1 << 20

// bufferArena hands out the byte buffers of one run and wipes all of them
// on release
type bufferArena struct {
	limit   int
	buffers [][]byte
}

func newBufferArena(limit int) *bufferArena {
	if limit <= 0 {
		limit = defaultMaxBufferSize
	}
	return &bufferArena{limit: limit}
}

// alloc returns a zeroed buffer of size bytes owned by the arena
func (a *bufferArena) alloc(size int, purpose string) ([]byte, error) {
	if size < 0 || size > a.limit {
		return nil, &AllocationError{Size: size, Purpose: purpose}
	}
	b := make([]byte, size)
	a.buffers = append(a.buffers, b)
	return b, nil
}

// release zeroes every buffer. The arena can be reused afterwards.
func (a *bufferArena) release() {
	for _, b := range a.buffers {
		zeroBytes(b)
	}
	a.buffers = nil
}
