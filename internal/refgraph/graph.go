// Package refgraph models the confirmed-reference adjacency discovered by
// a traversal and renders it as an indented ASCII tree.
package refgraph

import (
	"github.com/dbsmedya/refdump/internal/traverse"
)

// Graph is a directed reference graph rooted at the traversal seed.
// Edge order is discovery order, so rendering is deterministic for a
// fixed traversal.
type Graph struct {
	Root     string
	children map[string][]string
	labels   map[string]string
	nodes    map[string]bool
	order    []string
}

// New creates an empty graph rooted at root.
func New(root string) *Graph {
	g := &Graph{
		Root:     root,
		children: make(map[string][]string),
		labels:   make(map[string]string),
		nodes:    make(map[string]bool),
	}
	g.AddNode(root)
	return g
}

// FromResult builds the reference graph of a finished traversal: one edge
// per confirmed reference, one label per visited record's type tag.
//
// RD-P4-F1-T1: Reference adjacency from traversal output
func FromResult(res *traverse.Result) *Graph {
	g := New(res.Seed)
	for el := res.Refs.Front(); el != nil; el = el.Next() {
		g.AddNode(el.Key)
		for _, ref := range el.Value {
			g.AddEdge(el.Key, ref)
		}
	}
	for el := res.Visited.Front(); el != nil; el = el.Next() {
		g.AddNode(el.Key)
		g.SetLabel(el.Key, el.Value.TypeTag())
	}
	return g
}

// AddNode registers a record path as a graph node.
func (g *Graph) AddNode(path string) {
	if g.nodes[path] {
		return
	}
	g.nodes[path] = true
	g.order = append(g.order, path)
}

// AddEdge records that parent's content references child.
func (g *Graph) AddEdge(parent, child string) {
	g.AddNode(parent)
	g.AddNode(child)
	g.children[parent] = append(g.children[parent], child)
}

// SetLabel attaches a type-tag label to a node.
func (g *Graph) SetLabel(path, label string) {
	g.labels[path] = label
}

// Label returns the node's type-tag label, or "" for paths that were
// referenced but never fetched.
func (g *Graph) Label(path string) string {
	return g.labels[path]
}

// ChildrenOf returns the confirmed references of a record in discovery order.
func (g *Graph) ChildrenOf(parent string) []string {
	return g.children[parent]
}

// HasNode reports whether a path is part of the graph.
func (g *Graph) HasNode(path string) bool {
	return g.nodes[path]
}

// AllNodes returns every node path in insertion order.
func (g *Graph) AllNodes() []string {
	return append([]string(nil), g.order...)
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of reference edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, refs := range g.children {
		count += len(refs)
	}
	return count
}
