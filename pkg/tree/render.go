package tree

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/ziplock/pkg/manifest"
)

var groupTags = map[manifest.Group]string{
	manifest.Optional:    " (optional)",
	manifest.Development: " (dev)",
}

// WriteText prints t as an indented tree, one package per line:
//
//	app
//	├── a@1.2.0
//	│   └── b@2.0.1
//	└── jest@29.7.0 (dev)
func (t Tree) WriteText(w io.Writer, root string) error {
	if root == "" {
		root = "."
	}
	if _, err := fmt.Fprintln(w, root); err != nil {
		return err
	}
	return t.writeText(w, "")
}

type entry struct {
	group manifest.Group
	name  string
	node  *Node
}

func (t Tree) entries() []entry {
	var out []entry
	for _, g := range manifest.Groups {
		for _, name := range slices.Sorted(maps.Keys(t[g])) {
			out = append(out, entry{g, name, t[g][name]})
		}
	}
	return out
}

func (t Tree) writeText(w io.Writer, indent string) error {
	entries := t.entries()
	for i, e := range entries {
		branch, next := "├── ", "│   "
		if i == len(entries)-1 {
			branch, next = "└── ", "    "
		}
		if _, err := fmt.Fprintf(w, "%s%s%s@%s%s\n", indent, branch, e.name, e.node.Version, groupTags[e.group]); err != nil {
			return err
		}
		if err := e.node.Deps.writeText(w, indent+next); err != nil {
			return err
		}
	}
	return nil
}

var edgeStyles = map[manifest.Group]string{
	manifest.Optional:    " [style=dashed]",
	manifest.Development: " [style=dotted]",
}

// ToDOT converts t to Graphviz DOT. Each tree position becomes its own
// node, so a package resolved at two places in the tree appears twice.
// Optional edges are dashed and development edges dotted.
func (t Tree) ToDOT(root string) string {
	if root == "" {
		root = "root"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=lightgrey];\n", "/", root)

	_ = t.Walk(func(path []Step, n *Node) error {
		id, parent := pathID(path), pathID(path[:len(path)-1])
		last := path[len(path)-1]
		fmt.Fprintf(&buf, "  %q [label=%q];\n", id, last.Name+"\n"+n.Version)
		fmt.Fprintf(&buf, "  %q -> %q%s;\n", parent, id, edgeStyles[last.Group])
		return nil
	})

	buf.WriteString("}\n")
	return buf.String()
}

func pathID(path []Step) string {
	var sb strings.Builder
	sb.WriteString("/")
	for i, s := range path {
		if i > 0 {
			sb.WriteString("/")
		}
		sb.WriteString(string(s.Group))
		sb.WriteString(":")
		sb.WriteString(s.Name)
	}
	return sb.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
