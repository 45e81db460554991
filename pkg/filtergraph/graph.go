// Package filtergraph compiles a declarative composition into an ffmpeg
// -filter_complex expression. Compilation is two phase: an explicit node and
// labeled edge graph is built and validated for topological order first,
// then serialized to the text format. The topology invariant is therefore
// testable independently of the serialization.
package filtergraph

import (
	"fmt"
	"regexp"
	"strings"
)

// Label names an intermediate filter output signal. Labels are allocated
// from a strictly increasing counter, so within one compile no two nodes
// can ever produce the same label and no node can consume a label produced
// by a later one.
type Label string

var sourceLabelPattern = regexp.MustCompile(`^\d+:[va]$`)

// IsSourceLabel reports whether a label addresses a raw encoder input
// stream (e.g. "0:v", "2:a") rather than an allocated intermediate.
func IsSourceLabel(l Label) bool {
	return sourceLabelPattern.MatchString(string(l))
}

// Input is one entry of the encoder's ordered input list. Options are
// decode time arguments which must precede the input on the command line,
// such as source trims.
type Input struct {
	Path    string
	Options []string
}

// Node is a single named filter invocation: it consumes one or more labels
// and produces exactly one.
type Node struct {
	Filter string
	Args   string
	Inputs []Label
	Output Label
}

// CompileError is a fatal composition-to-graph failure. It is always
// raised before any encoder process spawns, so a failed compile has no
// partial side effects.
type CompileError struct {
	Detail string
}

func (e *CompileError) Error() string {
	return "filter graph compile error: " + e.Detail
}

func compileErrorf(format string, a ...interface{}) error {
	return &CompileError{Detail: fmt.Sprintf(format, a...)}
}

// Graph is the fully materialized filter graph for one render: the ordered
// input list, the filter nodes in registration order and the two terminal
// output labels.
type Graph struct {
	inputs    []Input
	nodes     []Node
	nextLabel int
	videoOut  Label
	audioOut  Label
}

func NewGraph() *Graph {
	return &Graph{}
}

func (g *Graph) allocLabel() Label {
	l := Label(fmt.Sprintf("s%d", g.nextLabel))
	g.nextLabel++
	return l
}

func (g *Graph) registerInput(in Input) int {
	g.inputs = append(g.inputs, in)
	return len(g.inputs) - 1
}

func (g *Graph) addNode(filter, args string, inputs ...Label) Label {
	out := g.allocLabel()
	g.nodes = append(g.nodes, Node{
		Filter: filter,
		Args:   args,
		Inputs: inputs,
		Output: out,
	})
	return out
}

func (g *Graph) Inputs() []Input {
	return g.inputs
}

func (g *Graph) Nodes() []Node {
	return g.nodes
}

// VideoOut is the terminal visual label mapped to the encoder output.
func (g *Graph) VideoOut() Label {
	return g.videoOut
}

// AudioOut is the terminal mixed audio label; ok is false when the
// composition carries no audio and nothing should be mapped.
func (g *Graph) AudioOut() (Label, bool) {
	return g.audioOut, g.audioOut != ""
}

// Validate checks the topology invariant: every produced label is pairwise
// distinct and every consumed label was either a raw source stream or
// produced by a strictly earlier node. A violation is fatal, never
// tolerated silently.
func (g *Graph) Validate() error {
	produced := map[Label]int{}
	for i, n := range g.nodes {
		for _, in := range n.Inputs {
			if IsSourceLabel(in) {
				continue
			}
			at, ok := produced[in]
			if !ok {
				return compileErrorf("node %d (%s) consumes label [%s] which no earlier node produced", i, n.Filter, in)
			}
			if at >= i {
				return compileErrorf("node %d (%s) consumes label [%s] produced by later node %d", i, n.Filter, in, at)
			}
		}

		if IsSourceLabel(n.Output) {
			return compileErrorf("node %d (%s) cannot produce onto source stream [%s]", i, n.Filter, n.Output)
		}
		if at, collision := produced[n.Output]; collision {
			return compileErrorf("label collision: [%s] produced by both node %d and node %d", n.Output, at, i)
		}
		produced[n.Output] = i
	}

	if g.videoOut == "" {
		return compileErrorf("graph has no terminal visual label")
	}
	if _, ok := produced[g.videoOut]; !ok {
		return compileErrorf("terminal visual label [%s] is never produced", g.videoOut)
	}
	if g.audioOut != "" {
		if _, ok := produced[g.audioOut]; !ok {
			return compileErrorf("terminal audio label [%s] is never produced", g.audioOut)
		}
	}

	return nil
}

// String serializes the graph into -filter_complex form: filter nodes join
// into comma separated chains wherever one node feeds the next exclusively,
// chains separate with semicolons, all in registration order.
func (g *Graph) String() string {
	uses := map[Label]int{}
	for _, n := range g.nodes {
		for _, in := range n.Inputs {
			uses[in]++
		}
	}
	if g.videoOut != "" {
		uses[g.videoOut]++
	}
	if g.audioOut != "" {
		uses[g.audioOut]++
	}

	continues := make([]bool, len(g.nodes))
	for i := 1; i < len(g.nodes); i++ {
		prevOut := g.nodes[i-1].Output
		continues[i] = len(g.nodes[i].Inputs) == 1 &&
			g.nodes[i].Inputs[0] == prevOut &&
			uses[prevOut] == 1
	}

	sb := strings.Builder{}
	for i, n := range g.nodes {
		if i > 0 {
			if continues[i] {
				sb.WriteString(",")
			} else {
				sb.WriteString(";")
			}
		}
		if !continues[i] {
			for _, in := range n.Inputs {
				sb.WriteString("[" + string(in) + "]")
			}
		}
		sb.WriteString(n.Filter)
		if n.Args != "" {
			sb.WriteString("=" + n.Args)
		}
		if i == len(g.nodes)-1 || !continues[i+1] {
			sb.WriteString("[" + string(n.Output) + "]")
		}
	}
	return sb.String()
}
