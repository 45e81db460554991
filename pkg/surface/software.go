package surface

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sort"
	"strconv"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/tauraamui/framewright/pkg/composition"
	"github.com/tauraamui/framewright/pkg/timeline"
	"github.com/tauraamui/xerror"
	"golang.org/x/image/font/gofont/goregular"
)

const labelPointSize = 14

// Software is an off-screen reference surface. It rasterizes whichever
// visual nodes are active at the clock's current frame as flat fills and
// stamps the frame index in the corner, then PNG encodes the canvas. The
// host application substitutes its real UI surface in production; this one
// backs tests and headless runs.
type Software struct {
	*Loop
	tl    timeline.Timeline
	clock *timeline.Clock
	nodes []composition.Node
	font  *truetype.Font
}

func NewSoftware(tl timeline.Timeline, clock *timeline.Clock, nodes []composition.Node) (*Software, error) {
	fnt, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, xerror.Errorf("unable to parse label font: %w", err)
	}

	visuals := make([]composition.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.IsVisual() {
			visuals = append(visuals, n)
		}
	}
	sort.SliceStable(visuals, func(i, j int) bool { return visuals[i].Z < visuals[j].Z })

	s := &Software{
		tl:    tl,
		clock: clock,
		nodes: visuals,
		font:  fnt,
	}
	s.Loop = NewLoop(s.paint)
	return s, nil
}

func (s *Software) paint(density float64) ([]byte, error) {
	if density <= 0 {
		return nil, xerror.Errorf("pixel density must be positive, got %f", density)
	}

	w := int(float64(s.tl.Width) * density)
	h := int(float64(s.tl.Height) * density)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	frame := s.clock.Current()
	for _, n := range s.nodes {
		if frame < n.StartFrame || frame >= n.EndFrame {
			continue
		}
		draw.Draw(img, img.Bounds(), image.NewUniform(parseFill(n.Fill)), image.Point{}, draw.Over)
	}

	if err := s.stampFrameIndex(img, frame, density); err != nil {
		return nil, err
	}

	encoded := bytes.Buffer{}
	if err := png.Encode(&encoded, img); err != nil {
		return nil, xerror.Errorf("unable to encode frame %d to bytes: %w", frame, err)
	}
	return encoded.Bytes(), nil
}

func (s *Software) stampFrameIndex(img *image.RGBA, frame int, density float64) error {
	ftCtx := freetype.NewContext()
	ftCtx.SetDPI(72 * density)
	ftCtx.SetFont(s.font)
	ftCtx.SetFontSize(labelPointSize)
	ftCtx.SetClip(img.Bounds())
	ftCtx.SetDst(img)
	ftCtx.SetSrc(image.NewUniform(color.White))

	anchor := freetype.Pt(8, img.Bounds().Dy()-8)
	if _, err := ftCtx.DrawString(strconv.Itoa(frame), anchor); err != nil {
		return xerror.Errorf("unable to stamp index label onto frame %d: %w", frame, err)
	}
	return nil
}

func parseFill(fill string) color.RGBA {
	if len(fill) != 7 || fill[0] != '#' {
		return color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	}
	channel := func(hex string) uint8 {
		v, err := strconv.ParseUint(hex, 16, 8)
		if err != nil {
			return 0
		}
		return uint8(v)
	}
	return color.RGBA{
		R: channel(fill[1:3]),
		G: channel(fill[3:5]),
		B: channel(fill[5:7]),
		A: 0xff,
	}
}
