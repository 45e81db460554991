package filtergraph

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/afero"
	"github.com/tauraamui/framewright/pkg/composition"
	"github.com/tauraamui/framewright/pkg/timeline"
)

var fs afero.Fs = afero.NewOsFs()

// Compile translates an ordered set of composition nodes into a validated
// filter graph. Input 0 is always the captured frame canvas; every external
// media node claims the next free input slot in declaration order. The
// returned graph is fully materialized and topologically valid, or the
// compile fails with no side effects.
func Compile(tl timeline.Timeline, canvas Input, nodes []composition.Node) (*Graph, error) {
	resolved, err := composition.ResolveAnchors(nodes)
	if err != nil {
		return nil, compileErrorf("%v", err)
	}

	g := NewGraph()
	g.registerInput(canvas)

	var visuals, audioTracks, transitions []compiledNode
	for _, n := range resolved {
		if n.Kind == composition.KindSyncAnchor {
			continue
		}
		if err := checkRange(tl, n); err != nil {
			return nil, err
		}

		cn := compiledNode{node: n}
		if requiresMedia(n) {
			idx, err := registerMedia(g, n)
			if err != nil {
				return nil, err
			}
			cn.inputIndex = idx
		}

		switch n.Kind {
		case composition.KindLayer:
			// plain layers are painted into the canvas by the capture
			// surface; they never enter shared filter space
		case composition.KindVideoLayer:
			visuals = append(visuals, cn)
		case composition.KindAudioTrack:
			audioTracks = append(audioTracks, cn)
		case composition.KindTransition:
			transitions = append(transitions, cn)
		default:
			return nil, compileErrorf("node %q has unknown kind %q", n.Name, n.Kind)
		}
	}

	g.videoOut = compileVisuals(g, tl, visuals, transitions)
	compileAudio(g, tl, audioTracks)

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

type compiledNode struct {
	node       composition.Node
	inputIndex int
}

func (cn compiledNode) videoSource() Label {
	return Label(fmt.Sprintf("%d:v", cn.inputIndex))
}

func (cn compiledNode) audioSource() Label {
	return Label(fmt.Sprintf("%d:a", cn.inputIndex))
}

func requiresMedia(n composition.Node) bool {
	return n.Kind == composition.KindVideoLayer ||
		n.Kind == composition.KindAudioTrack ||
		n.Kind == composition.KindTransition
}

func registerMedia(g *Graph, n composition.Node) (int, error) {
	if n.AssetPath == "" {
		return 0, compileErrorf("node %q requires an asset path", n.Name)
	}
	if _, err := fs.Stat(n.AssetPath); err != nil {
		if os.IsNotExist(err) {
			return 0, compileErrorf("node %q references missing asset %s", n.Name, n.AssetPath)
		}
		return 0, compileErrorf("node %q asset %s is unreadable: %v", n.Name, n.AssetPath, err)
	}

	idx := g.registerInput(Input{
		Path:    n.AssetPath,
		Options: decodeOptions(n),
	})
	if n.InputIndex != 0 && n.InputIndex != idx {
		return 0, compileErrorf(
			"node %q annotated with input index %d but registration allocated %d",
			n.Name, n.InputIndex, idx,
		)
	}
	return idx, nil
}

// decodeOptions yields the decode time arguments a media node needs before
// its stream enters shared filter space, currently just source trims.
func decodeOptions(n composition.Node) []string {
	var opts []string
	if n.Kind == composition.KindVideoLayer {
		if n.TrimStartSecs > 0 {
			opts = append(opts, "-ss", formatSeconds(n.TrimStartSecs))
		}
		if n.TrimEndSecs > n.TrimStartSecs {
			opts = append(opts, "-to", formatSeconds(n.TrimEndSecs))
		}
	}
	return opts
}

// compileVisuals seeds the visual accumulator with the canvas stream, then
// folds every visual node onto it in ascending z order, and finally blends
// transition media across their declared windows. The returned label is the
// single remaining visual signal.
func compileVisuals(g *Graph, tl timeline.Timeline, visuals, transitions []compiledNode) Label {
	acc := g.addNode("null", "", Label("0:v"))

	sort.SliceStable(visuals, func(i, j int) bool { return visuals[i].node.Z < visuals[j].node.Z })
	for _, v := range visuals {
		offset := tl.FrameToSeconds(v.node.StartFrame)
		prepped := g.addNode("setpts", fmt.Sprintf("PTS-STARTPTS+%s/TB", formatSeconds(offset)), v.videoSource())
		acc = g.addNode(
			"overlay",
			fmt.Sprintf("x=%d:y=%d:%s", v.node.X, v.node.Y, enableExpr(v.node.StartFrame, v.node.EndFrame)),
			acc, prepped,
		)
	}

	sort.SliceStable(transitions, func(i, j int) bool {
		return transitions[i].node.StartFrame < transitions[j].node.StartFrame
	})
	for _, t := range transitions {
		acc = g.addNode(
			"blend",
			blendExpr(t.node.StartFrame, t.node.DurationFrames),
			acc, t.videoSource(),
		)
	}

	return acc
}

// compileAudio processes every audio track independently (trim, volume,
// fade windows, placement) then folds all of them into a single mixing
// node. No audio nodes means no audio label is ever produced or mapped.
func compileAudio(g *Graph, tl timeline.Timeline, tracks []compiledNode) {
	if len(tracks) == 0 {
		return
	}

	extendMaster := false
	processed := make([]Label, 0, len(tracks))
	for _, t := range tracks {
		n := t.node
		spanSecs := tl.FrameToSeconds(n.Span())

		cur := g.addNode(
			"atrim",
			fmt.Sprintf("start=%s:end=%s", formatSeconds(n.TrimStartSecs), formatSeconds(n.TrimStartSecs+spanSecs)),
			t.audioSource(),
		)
		cur = g.addNode("asetpts", "PTS-STARTPTS", cur)
		cur = g.addNode("volume", formatSeconds(n.Volume), cur)

		if n.FadeInFrames > 0 {
			cur = g.addNode(
				"afade",
				fmt.Sprintf("t=in:st=0:d=%s", formatSeconds(tl.FrameToSeconds(n.FadeInFrames))),
				cur,
			)
		}
		if n.FadeOutFrames > 0 {
			fadeOutSecs := tl.FrameToSeconds(n.FadeOutFrames)
			cur = g.addNode(
				"afade",
				fmt.Sprintf("t=out:st=%s:d=%s", formatSeconds(spanSecs-fadeOutSecs), formatSeconds(fadeOutSecs)),
				cur,
			)
		}
		if n.StartFrame > 0 {
			delayMS := int64(n.StartFrame) * 1000 / int64(tl.FPS)
			cur = g.addNode("adelay", fmt.Sprintf("delays=%d:all=1", delayMS), cur)
		}

		if n.ExtendMaster {
			extendMaster = true
		}
		processed = append(processed, cur)
	}

	policy := "shortest"
	if extendMaster {
		policy = "longest"
	}
	g.audioOut = g.addNode(
		"amix",
		fmt.Sprintf("inputs=%d:duration=%s", len(processed), policy),
		processed...,
	)
}

func checkRange(tl timeline.Timeline, n composition.Node) error {
	if n.Span() <= 0 {
		return compileErrorf("node %q has empty or inverted frame range [%d,%d)", n.Name, n.StartFrame, n.EndFrame)
	}
	if !tl.Contains(n.StartFrame) || n.EndFrame > tl.TotalFrames {
		return compileErrorf(
			"node %q range [%d,%d) sits outside timeline of %d frames",
			n.Name, n.StartFrame, n.EndFrame, tl.TotalFrames,
		)
	}
	return nil
}
