// Package pool provides reusable copy buffers for handle-to-handle copies.
//
// Copies between two handles stream through one of these buffers instead of
// loading the source into memory, and the buffers are reused across copies to
// keep allocations flat.
package pool

import (
	"io"
	"sync"
)

const (
	// SmallBufferSize is used when the caller bounds the copy to at most 4KB.
	SmallBufferSize = 4 * 1024
	// MediumBufferSize is the default copy buffer (32KB, the io.Copy default).
	MediumBufferSize = 32 * 1024
	// LargeBufferSize is used for bounded copies of 1MB and more.
	LargeBufferSize = 1024 * 1024
)

// BufferPool manages reusable copy buffers of three sizes.
type BufferPool struct {
	small  *sync.Pool
	medium *sync.Pool
	large  *sync.Pool
}

func newSizedPool(size int) *sync.Pool {
	return &sync.Pool{
		New: func() interface{} {
			buf := make([]byte, size)
			return &buf
		},
	}
}

// NewBufferPool creates a new buffer pool with default sizes.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		small:  newSizedPool(SmallBufferSize),
		medium: newSizedPool(MediumBufferSize),
		large:  newSizedPool(LargeBufferSize),
	}
}

// Get returns a full-length buffer suited to a copy of length bytes.
// A negative length means the copy is unbounded.
// The caller is responsible for calling Put to return the buffer to the pool.
func (bp *BufferPool) Get(length int64) []byte {
	var p *sync.Pool
	switch {
	case length >= 0 && length <= SmallBufferSize:
		p = bp.small
	case length >= LargeBufferSize:
		p = bp.large
	default:
		p = bp.medium
	}
	bufPtr := p.Get().(*[]byte)
	return (*bufPtr)[:cap(*bufPtr)]
}

// Put returns a buffer to the pool matching its capacity.
// Buffers of any other capacity are dropped.
func (bp *BufferPool) Put(buf []byte) {
	buf = buf[:cap(buf)]
	switch cap(buf) {
	case SmallBufferSize:
		bp.small.Put(&buf)
	case MediumBufferSize:
		bp.medium.Put(&buf)
	case LargeBufferSize:
		bp.large.Put(&buf)
	}
}

// Copy copies from src to dst through a pooled buffer. At most length bytes
// are copied; a negative length copies until EOF.
func (bp *BufferPool) Copy(dst io.Writer, src io.Reader, length int64) (int64, error) {
	buf := bp.Get(length)
	defer bp.Put(buf)

	if length >= 0 {
		src = io.LimitReader(src, length)
	}
	return io.CopyBuffer(dst, src, buf)
}

var globalBufferPool = NewBufferPool()

// Copy copies through the global pool. See BufferPool.Copy.
func Copy(dst io.Writer, src io.Reader, length int64) (int64, error) {
	return globalBufferPool.Copy(dst, src, length)
}
