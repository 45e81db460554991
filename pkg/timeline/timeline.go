package timeline

import (
	"fmt"
	"time"

	"github.com/tauraamui/xerror"
)

// Timeline carries the fixed fps/duration/resolution context for a single
// render. Instances are value types and treated as immutable once handed
// to the engine.
type Timeline struct {
	FPS         int `json:"fps" validate:"gte=1"`
	TotalFrames int `json:"total_frames" validate:"gte=1"`
	Width       int `json:"width" validate:"gte=2"`
	Height      int `json:"height" validate:"gte=2"`
}

func (t Timeline) Validate() error {
	if t.FPS < 1 {
		return xerror.Errorf("timeline fps must be at least 1, got %d", t.FPS)
	}
	if t.TotalFrames < 1 {
		return xerror.Errorf("timeline must span at least 1 frame, got %d", t.TotalFrames)
	}
	if t.Width < 2 || t.Height < 2 {
		return xerror.Errorf("timeline resolution %dx%d below minimum 2x2", t.Width, t.Height)
	}
	return nil
}

func (t Timeline) Duration() time.Duration {
	return time.Duration(t.TotalFrames) * time.Second / time.Duration(t.FPS)
}

// FrameToSeconds converts a frame index to a wall clock offset, truncated
// toward zero at millisecond precision. Truncation rather than rounding is
// deliberate so repeated conversions of adjacent frames can never cross
// over each other on fractional frame rates.
func (t Timeline) FrameToSeconds(frame int) float64 {
	ms := int64(frame) * 1000 / int64(t.FPS)
	return float64(ms) / 1000
}

func (t Timeline) Contains(frame int) bool {
	return frame >= 0 && frame < t.TotalFrames
}

// FrameFileName yields the zero padded staging file name for a frame index.
// Padding is fixed width so lexicographic directory order equals frame order.
func FrameFileName(index int) string {
	return fmt.Sprintf("%06d.png", index)
}
