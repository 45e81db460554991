package timeline

import "sync/atomic"

// Clock is the single designated entry point for the shared "current frame
// index" consumed by a rendering surface. Only the frame driver advances it;
// everything else reads.
type Clock struct {
	frame int64
}

func NewClock() *Clock {
	return &Clock{frame: -1}
}

// Set advances the clock to the given frame index.
func (c *Clock) Set(frame int) {
	atomic.StoreInt64(&c.frame, int64(frame))
}

// Current returns the most recently set frame index, or -1 if the clock
// has never been advanced.
func (c *Clock) Current() int {
	return int(atomic.LoadInt64(&c.frame))
}
