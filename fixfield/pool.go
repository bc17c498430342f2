package fixfield

import "sync"

// BufferPool recycles the byte slices Serialize appends into, avoiding a
// fresh allocation per field on the hot encode path (SPEC_FULL.md §4.1a).
// Grounded on fix/message_pool.go's MessagePool.bufferPool idiom, narrowed
// from bytes.Buffer (the teacher builds whole messages into one) down to
// raw []byte slices since FieldType.Serialize operates at field
// granularity and is called once per field per encode.
type BufferPool struct {
	pool sync.Pool
}

// NewBufferPool returns a pool whose buffers start at the given capacity.
func NewBufferPool(initialCap int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				b := make([]byte, 0, initialCap)
				return &b
			},
		},
	}
}

// Get returns a zero-length buffer with spare capacity.
func (p *BufferPool) Get() []byte {
	b := p.pool.Get().(*[]byte)
	return (*b)[:0]
}

// Put returns a buffer to the pool for reuse. Callers must not retain buf
// after calling Put.
func (p *BufferPool) Put(buf []byte) {
	buf = buf[:0]
	p.pool.Put(&buf)
}
