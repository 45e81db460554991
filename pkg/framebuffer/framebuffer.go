package framebuffer

import (
	"context"
	"sync"

	"github.com/tauraamui/xerror"
)

// DefaultCapacity bounds peak raw pixel memory whilst still letting the
// producer run modestly ahead of a slower consumer.
const DefaultCapacity = 5

var (
	ErrClosed  = xerror.New("framebuffer is closed")
	ErrDrained = xerror.New("framebuffer is closed and fully drained")
)

// Frame is a single rasterized output at a discrete timeline index.
type Frame struct {
	Index int
	Data  []byte
}

// Buffer is a bounded FIFO queue of frames and the engine's sole
// backpressure mechanism: Put suspends the producer whilst the buffer sits
// at capacity, Take suspends the consumer whilst it sits empty. A closed
// buffer still hands out whatever it already holds.
type Buffer struct {
	frames    chan Frame
	done      chan struct{}
	closeOnce sync.Once
}

func New(capacity int) (*Buffer, error) {
	if capacity < 1 {
		return nil, xerror.Errorf("framebuffer capacity must be at least 1, got %d", capacity)
	}
	return &Buffer{
		frames: make(chan Frame, capacity),
		done:   make(chan struct{}),
	}, nil
}

// Put enqueues a frame, suspending until space frees up. Returns ErrClosed
// once Close has been called.
func (b *Buffer) Put(ctx context.Context, f Frame) error {
	select {
	case <-b.done:
		return ErrClosed
	default:
	}

	select {
	case b.frames <- f:
		return nil
	case <-b.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Take dequeues the oldest buffered frame, suspending until one arrives.
// Once the buffer is closed and empty it returns ErrDrained.
func (b *Buffer) Take(ctx context.Context) (Frame, error) {
	select {
	case f := <-b.frames:
		return f, nil
	case <-b.done:
		// closed but possibly not yet drained
		select {
		case f := <-b.frames:
			return f, nil
		default:
			return Frame{}, ErrDrained
		}
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

// Close signals the end of production. Buffered frames remain takeable.
// Calling Close more than once is a no-op.
func (b *Buffer) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}
