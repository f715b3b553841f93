// Package tree holds the nested dependency tree produced by a build.
//
// A [Tree] maps each dependency group to the packages resolved in it. Every
// [Node] records the version it resolved to and, recursively, the tree of
// its own dependencies. The JSON encoding flattens a node's groups next to
// its version:
//
//	{
//	  "dependencies": {
//	    "a": {"version": "1.2.0", "dependencies": {"b": {"version": "2.0.1"}}}
//	  }
//	}
package tree

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/matzehuels/ziplock/pkg/manifest"
)

// Tree maps dependency groups to resolved packages by name.
type Tree map[manifest.Group]map[string]*Node

// Node is a resolved package.
type Node struct {
	Version string
	Deps    Tree
}

// Step is one (group, name) hop from a tree root towards a node.
type Step struct {
	Group manifest.Group
	Name  string
}

// Set inserts n under group and name, creating the group on demand.
func (t Tree) Set(g manifest.Group, name string, n *Node) {
	if t[g] == nil {
		t[g] = make(map[string]*Node)
	}
	t[g][name] = n
}

// Get returns the node stored under group and name.
func (t Tree) Get(g manifest.Group, name string) (*Node, bool) {
	n, ok := t[g][name]
	return n, ok
}

// Merge copies every entry of other into t.
func (t Tree) Merge(other Tree) {
	for g, nodes := range other {
		for name, n := range nodes {
			t.Set(g, name, n)
		}
	}
}

// Lookup follows path from the root of t.
func (t Tree) Lookup(path ...Step) (*Node, bool) {
	cur := t
	var n *Node
	for _, s := range path {
		next, ok := cur.Get(s.Group, s.Name)
		if !ok {
			return nil, false
		}
		n, cur = next, next.Deps
	}
	return n, n != nil
}

// Count returns the number of nodes in t, at every depth.
func (t Tree) Count() int {
	count := 0
	_ = t.Walk(func([]Step, *Node) error {
		count++
		return nil
	})
	return count
}

// Walk visits every node depth-first, groups in [manifest.Groups] order and
// names sorted. The path slice is reused between calls; copy it to retain
// it. A non-nil error from fn stops the walk and is returned.
func (t Tree) Walk(fn func(path []Step, n *Node) error) error {
	return t.walk(nil, fn)
}

func (t Tree) walk(path []Step, fn func([]Step, *Node) error) error {
	for _, g := range manifest.Groups {
		nodes := t[g]
		for _, name := range slices.Sorted(maps.Keys(nodes)) {
			n := nodes[name]
			p := append(path, Step{Group: g, Name: name})
			if err := fn(p, n); err != nil {
				return err
			}
			if err := n.Deps.walk(p, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// MarshalJSON encodes an empty tree as {} rather than null.
func (t Tree) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[manifest.Group]map[string]*Node(t))
}

// MarshalJSON flattens the node's groups next to its version.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Deps)+1)
	out["version"] = n.Version
	for g, nodes := range n.Deps {
		out[string(g)] = nodes
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the flattened node layout. Unknown keys are ignored.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Node{}
	if v, ok := raw["version"]; ok {
		if err := json.Unmarshal(v, &n.Version); err != nil {
			return err
		}
	}
	for _, g := range manifest.Groups {
		v, ok := raw[string(g)]
		if !ok {
			continue
		}
		var nodes map[string]*Node
		if err := json.Unmarshal(v, &nodes); err != nil {
			return err
		}
		if n.Deps == nil {
			n.Deps = make(Tree)
		}
		n.Deps[g] = nodes
	}
	return nil
}
