package refgraph

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Markers appended to nodes that terminate a branch early.
const (
	cycleMarker  = " (cycle)"
	repeatMarker = " (seen)"
)

type treeLine struct {
	text  string
	label string
}

// RenderTree draws the graph as an indented ASCII tree from the root.
// A node reappearing on its own ancestor chain is marked as a cycle; a
// node already drawn elsewhere is marked as seen. Neither is descended
// into again, so rendering terminates on any graph.
//
// Type-tag labels are right-aligned into a common column using terminal
// cell widths, so tags line up even when record paths carry wide runes.
//
// RD-P4-F1-T2: ASCII tree rendering with cycle markers
func (g *Graph) RenderTree() string {
	var lines []treeLine
	g.walk(g.Root, "", "", make(map[string]bool), make(map[string]bool), &lines)

	width := 0
	for _, ln := range lines {
		if w := runewidth.StringWidth(ln.text); w > width {
			width = w
		}
	}

	var b strings.Builder
	for _, ln := range lines {
		if ln.label == "" {
			b.WriteString(ln.text)
			b.WriteString("\n")
			continue
		}
		b.WriteString(runewidth.FillRight(ln.text, width+2))
		b.WriteString("[")
		b.WriteString(ln.label)
		b.WriteString("]\n")
	}
	return b.String()
}

func (g *Graph) walk(node, branch, childPrefix string, seen, path map[string]bool, lines *[]treeLine) {
	text := branch + node
	label := g.labels[node]

	switch {
	case path[node]:
		*lines = append(*lines, treeLine{text: text + cycleMarker, label: label})
		return
	case seen[node]:
		*lines = append(*lines, treeLine{text: text + repeatMarker, label: label})
		return
	}
	seen[node] = true
	*lines = append(*lines, treeLine{text: text, label: label})

	children := g.children[node]
	path[node] = true
	for i, child := range children {
		connector, extension := "├── ", "│   "
		if i == len(children)-1 {
			connector, extension = "└── ", "    "
		}
		g.walk(child, childPrefix+connector, childPrefix+extension, seen, path, lines)
	}
	delete(path, node)
}
