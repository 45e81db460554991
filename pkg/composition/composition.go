package composition

import (
	"github.com/tauraamui/framewright/pkg/timeline"
	"github.com/tauraamui/xerror"
)

type Kind string

const (
	KindLayer      = Kind("layer")
	KindVideoLayer = Kind("video_layer")
	KindAudioTrack = Kind("audio_track")
	KindTransition = Kind("transition")
	KindSyncAnchor = Kind("sync_anchor")
)

// Node is a single declarative timed element of a composition. Exactly one
// kind applies per node; the type specific fields are ignored for the rest.
type Node struct {
	Kind Kind   `json:"kind" validate:"empty=false"`
	Name string `json:"name"`

	StartFrame int `json:"start_frame" validate:"gte=0"`
	EndFrame   int `json:"end_frame" validate:"gte=0"`
	Z          int `json:"z"`

	// Anchor aligns this node's window to a named sync anchor instead of
	// an absolute start frame. Resolved before compilation.
	Anchor       string `json:"anchor"`
	AnchorOffset int    `json:"anchor_offset"`

	// media bearing nodes; paths arrive pre-resolved from the caller.
	AssetPath string `json:"asset_path"`
	// InputIndex is the encoder input slot this node's media occupies.
	// 0 is always the captured frame canvas, external media begins at 1.
	InputIndex int `json:"input_index"`

	// visual placement
	X int `json:"x"`
	Y int `json:"y"`
	// Fill is consumed by the software reference surface only.
	Fill string `json:"fill"`

	// source trim, seconds into the source media. Video layers honour
	// both ends at decode time; audio tracks take the start offset and
	// derive their end from the frame span.
	TrimStartSecs float64 `json:"trim_start_secs"`
	TrimEndSecs   float64 `json:"trim_end_secs"`

	// audio track params
	Volume        float64 `json:"volume"`
	FadeInFrames  int     `json:"fade_in_frames"`
	FadeOutFrames int     `json:"fade_out_frames"`
	// ExtendMaster opts this track out of the default "shortest"
	// mix duration policy.
	ExtendMaster bool `json:"extend_master"`

	// transition params
	DurationFrames int `json:"duration_frames"`
}

func (n Node) Span() int {
	return n.EndFrame - n.StartFrame
}

func (n Node) IsVisual() bool {
	return n.Kind == KindLayer || n.Kind == KindVideoLayer
}

func (n Node) IsAudio() bool {
	return n.Kind == KindAudioTrack
}

// Document is a full composition as handed to the engine: one timeline and
// the ordered nodes to realize against it.
type Document struct {
	Timeline timeline.Timeline `json:"timeline"`
	Nodes    []Node            `json:"nodes"`
}

// ResolveAnchors rewrites anchored node windows into absolute frame space.
// Returns a new node slice; the input is left untouched.
func ResolveAnchors(nodes []Node) ([]Node, error) {
	anchors := map[string]int{}
	for _, n := range nodes {
		if n.Kind != KindSyncAnchor {
			continue
		}
		if n.Name == "" {
			return nil, xerror.New("sync anchor requires a name")
		}
		if _, exists := anchors[n.Name]; exists {
			return nil, xerror.Errorf("duplicate sync anchor %q", n.Name)
		}
		anchors[n.Name] = n.StartFrame
	}

	resolved := make([]Node, len(nodes))
	copy(resolved, nodes)
	for i := range resolved {
		n := &resolved[i]
		if n.Anchor == "" {
			continue
		}
		at, ok := anchors[n.Anchor]
		if !ok {
			return nil, xerror.Errorf("node %q references unknown sync anchor %q", n.Name, n.Anchor)
		}
		span := n.Span()
		n.StartFrame = at + n.AnchorOffset
		n.EndFrame = n.StartFrame + span
	}

	return resolved, nil
}

// RunValidate applies the cross field rules which struct tags cannot
// express. Violations here are configuration failures: they reject the
// document before a render job is ever constructed.
func (d Document) RunValidate() error {
	if err := d.Timeline.Validate(); err != nil {
		return err
	}
	if len(d.Nodes) == 0 {
		return xerror.New("composition requires at least one node")
	}

	nodes, err := ResolveAnchors(d.Nodes)
	if err != nil {
		return err
	}

	for _, n := range nodes {
		if err := d.validateNode(n); err != nil {
			return err
		}
	}
	return nil
}

func (d Document) validateNode(n Node) error {
	switch n.Kind {
	case KindSyncAnchor:
		if !d.Timeline.Contains(n.StartFrame) {
			return xerror.Errorf("sync anchor %q at frame %d sits outside the timeline", n.Name, n.StartFrame)
		}
		return nil
	case KindLayer, KindVideoLayer, KindAudioTrack, KindTransition:
	default:
		return xerror.Errorf("unknown node kind %q", n.Kind)
	}

	if n.Span() <= 0 {
		return xerror.Errorf("node %q has empty or inverted frame range [%d,%d)", n.Name, n.StartFrame, n.EndFrame)
	}
	if !d.Timeline.Contains(n.StartFrame) || n.EndFrame > d.Timeline.TotalFrames {
		return xerror.Errorf(
			"node %q range [%d,%d) exceeds timeline of %d frames",
			n.Name, n.StartFrame, n.EndFrame, d.Timeline.TotalFrames,
		)
	}

	switch n.Kind {
	case KindVideoLayer, KindAudioTrack:
		if n.AssetPath == "" {
			return xerror.Errorf("node %q requires an asset path", n.Name)
		}
		if n.InputIndex < 1 {
			return xerror.Errorf("media node %q requires an input index of 1 or above, got %d", n.Name, n.InputIndex)
		}
	}

	if n.Kind == KindAudioTrack {
		if n.Volume < 0 {
			return xerror.Errorf("audio track %q volume cannot be negative", n.Name)
		}
		if n.FadeInFrames+n.FadeOutFrames > n.Span() {
			return xerror.Errorf("audio track %q fade windows overlap across %d frames", n.Name, n.Span())
		}
	}

	if n.Kind == KindTransition && n.DurationFrames < 1 {
		return xerror.Errorf("transition %q requires a duration of at least 1 frame", n.Name)
	}

	return nil
}
