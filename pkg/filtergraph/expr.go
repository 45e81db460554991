package filtergraph

import (
	"fmt"
	"strconv"
)

// Timeline guards operate on the integer frame number variable rather than
// wall clock seconds, so cutover stays frame exact regardless of fractional
// fps rounding.

// enableExpr guards a filter to the frames of [start,end). ffmpeg's
// between() is inclusive on both ends, hence end-1.
func enableExpr(start, end int) string {
	return fmt.Sprintf("enable='between(n,%d,%d)'", start, end-1)
}

// blendExpr crossfades stream A into stream B across the transition
// window. The weight ramps linearly with elapsed frames over duration,
// clamped to [0,1], blending without a separate alpha pass.
func blendExpr(start, duration int) string {
	w := fmt.Sprintf("min(max((N-%d)/%d,0),1)", start, duration)
	return fmt.Sprintf("all_expr='A*(1-%s)+B*%s'", w, w)
}

// BlendWeightAt evaluates the same weight function blendExpr serializes,
// letting tests pin the ramp boundaries without an encoder in the loop.
func BlendWeightAt(frame, start, duration int) float64 {
	w := float64(frame-start) / float64(duration)
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

func formatSeconds(secs float64) string {
	return strconv.FormatFloat(secs, 'f', -1, 64)
}
