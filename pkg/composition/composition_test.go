package composition_test

import (
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tauraamui/framewright/pkg/composition"
	"github.com/tauraamui/framewright/pkg/timeline"
)

func testTimeline() timeline.Timeline {
	return timeline.Timeline{FPS: 30, TotalFrames: 300, Width: 640, Height: 480}
}

func TestValidateAcceptsFullSpanLayer(t *testing.T) {
	is := is.New(t)

	doc := composition.Document{
		Timeline: testTimeline(),
		Nodes: []composition.Node{
			{Kind: composition.KindLayer, Name: "bg", StartFrame: 0, EndFrame: 300, Fill: "#204060"},
		},
	}
	is.NoErr(doc.RunValidate())
}

func TestValidateRejectsEmptyComposition(t *testing.T) {
	is := is.New(t)

	doc := composition.Document{Timeline: testTimeline()}
	is.True(doc.RunValidate() != nil)
}

func TestValidateRejectsBrokenNodes(t *testing.T) {
	tests := []struct {
		title string
		node  composition.Node
	}{
		{
			title: "inverted frame range",
			node:  composition.Node{Kind: composition.KindLayer, Name: "l", StartFrame: 50, EndFrame: 20},
		},
		{
			title: "empty frame range",
			node:  composition.Node{Kind: composition.KindLayer, Name: "l", StartFrame: 50, EndFrame: 50},
		},
		{
			title: "range past end of timeline",
			node:  composition.Node{Kind: composition.KindLayer, Name: "l", StartFrame: 200, EndFrame: 301},
		},
		{
			title: "video layer without asset path",
			node:  composition.Node{Kind: composition.KindVideoLayer, Name: "v", StartFrame: 0, EndFrame: 30, InputIndex: 1},
		},
		{
			title: "video layer claiming the canvas input slot",
			node:  composition.Node{Kind: composition.KindVideoLayer, Name: "v", StartFrame: 0, EndFrame: 30, AssetPath: "a.mp4", InputIndex: 0},
		},
		{
			title: "negative volume",
			node: composition.Node{
				Kind: composition.KindAudioTrack, Name: "a", StartFrame: 0, EndFrame: 30,
				AssetPath: "a.wav", InputIndex: 1, Volume: -0.5,
			},
		},
		{
			title: "fades overlapping mid track",
			node: composition.Node{
				Kind: composition.KindAudioTrack, Name: "a", StartFrame: 0, EndFrame: 30,
				AssetPath: "a.wav", InputIndex: 1, Volume: 1,
				FadeInFrames: 20, FadeOutFrames: 20,
			},
		},
		{
			title: "zero duration transition",
			node:  composition.Node{Kind: composition.KindTransition, Name: "t", StartFrame: 0, EndFrame: 30, DurationFrames: 0},
		},
		{
			title: "unknown kind",
			node:  composition.Node{Kind: composition.Kind("wipe"), Name: "w", StartFrame: 0, EndFrame: 30},
		},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			doc := composition.Document{Timeline: testTimeline(), Nodes: []composition.Node{tt.node}}
			assert.Error(t, doc.RunValidate())
		})
	}
}

func TestValidateAcceptsFadesMeetingExactly(t *testing.T) {
	is := is.New(t)

	doc := composition.Document{
		Timeline: testTimeline(),
		Nodes: []composition.Node{
			{
				Kind: composition.KindAudioTrack, Name: "a", StartFrame: 0, EndFrame: 40,
				AssetPath: "a.wav", InputIndex: 1, Volume: 1,
				FadeInFrames: 20, FadeOutFrames: 20,
			},
		},
	}
	is.NoErr(doc.RunValidate())
}

func TestResolveAnchorsRewritesAnchoredWindows(t *testing.T) {
	is := is.New(t)

	nodes := []composition.Node{
		{Kind: composition.KindSyncAnchor, Name: "drop", StartFrame: 120},
		{Kind: composition.KindLayer, Name: "flash", StartFrame: 0, EndFrame: 15, Anchor: "drop", AnchorOffset: -5},
	}

	resolved, err := composition.ResolveAnchors(nodes)
	is.NoErr(err)
	is.Equal(resolved[1].StartFrame, 115)
	is.Equal(resolved[1].EndFrame, 130)

	// input slice is untouched
	is.Equal(nodes[1].StartFrame, 0)
	is.Equal(nodes[1].EndFrame, 15)
}

func TestResolveAnchorsRejectsUnknownAnchor(t *testing.T) {
	is := is.New(t)

	_, err := composition.ResolveAnchors([]composition.Node{
		{Kind: composition.KindLayer, Name: "flash", StartFrame: 0, EndFrame: 15, Anchor: "missing"},
	})
	is.True(err != nil)
}

func TestResolveAnchorsRejectsDuplicateAnchorNames(t *testing.T) {
	is := is.New(t)

	_, err := composition.ResolveAnchors([]composition.Node{
		{Kind: composition.KindSyncAnchor, Name: "drop", StartFrame: 100},
		{Kind: composition.KindSyncAnchor, Name: "drop", StartFrame: 200},
	})
	is.True(err != nil)
}

func TestValidateRejectsAnchorOutsideTimeline(t *testing.T) {
	require := require.New(t)

	doc := composition.Document{
		Timeline: testTimeline(),
		Nodes: []composition.Node{
			{Kind: composition.KindSyncAnchor, Name: "late", StartFrame: 400},
			{Kind: composition.KindLayer, Name: "bg", StartFrame: 0, EndFrame: 300},
		},
	}
	require.Error(doc.RunValidate())
}
