// Package designmodel indexes a routed design's cells, nets, and PIPs
// behind a Provider capability interface, so that either dcp-reader
// backend (an external EDA-tool driver or a native reader) can produce the
// same model without the evaluator caring which one built it.
//
// Grounded on netlist/netlist.go's Node type (R/L adjacency, ConnectRight/
// ConnectLeft) and rtl/rtl.go's Module cell/port indexing, generalized from
// a spice/RTL hierarchy (nodes, wires, subnets) into a flat placed-and-
// routed net/PIP model: a netlist.Node becomes a RouteNode, and
// ConnectRight/ConnectLeft become the forward/backward edges of a net's
// routing tree. original_source/lib/design_query.py's abstract DesignQuery
// class is the direct source for the Provider method set.
package designmodel

import "fmt"

// ErrMissingCheckpoint is returned when a Provider cannot be constructed
// because the dcp reader yielded no design.
var ErrMissingCheckpoint = fmt.Errorf("designmodel: missing checkpoint")

// Cell is a design cell placed at a site/bel.
type Cell struct {
	Name string
	Tile string
	Site string
	Bel  string
	Type string
}

// PIP is a single programmable interconnect point traversed by a net.
type PIP struct {
	Tile      string
	InputNode string
	OutputNode string
}

func (p PIP) String() string {
	return fmt.Sprintf("%s->%s", p.InputNode, p.OutputNode)
}

// RouteNode is one node (PIP endpoint or sink pin) in a net's routing tree.
type RouteNode struct {
	Tile string
	Name string
	Sink *Cell // non-nil if this node terminates at a cell input pin

	R []*RouteNode // downstream nodes, reached via ConnectForward
	L []*RouteNode // upstream nodes, reached via ConnectForward from elsewhere
}

func (n *RouteNode) ConnectForward(to *RouteNode) {
	n.R = append(n.R, to)
	to.L = append(to.L, n)
}

// RouteGraph is a net's routing tree, keyed by "tile/node" so that PIPs in
// different tiles never collide, per design note 9.3: an adjacency map
// rather than a global search structure.
type RouteGraph struct {
	Net   *Net
	nodes map[string]*RouteNode
}

func nodeKey(tile, node string) string {
	return tile + "/" + node
}

// NodeAt returns the RouteNode for a (tile, node) pair, if the net's route
// passes through it.
func (g *RouteGraph) NodeAt(tile, node string) (*RouteNode, bool) {
	n, ok := g.nodes[nodeKey(tile, node)]
	return n, ok
}

// Sink identifies one pin a net terminates at: Tile/Node locates it in the
// net's routing tree (must match a PIP's OutputNode in that tile), while
// Tile/Site/Bel locates the cell placed there. The two halves are looked up
// separately because a route node key ("tile/node") and a cell key
// ("tile/site/bel") are different shapes of the same physical location.
type Sink struct {
	Tile string
	Node string
	Site string
	Bel  string
}

// Net is a routed design net: one driver, one or more sinks, realized by a
// routing tree of PIPs.
type Net struct {
	Name   string
	Driver string
	Sinks  []Sink
	PIPs   []PIP
	graph  *RouteGraph
}

// Provider is the capability contract a DesignModel producer satisfies.
// No state is shared between two Provider instances.
type Provider interface {
	CellAt(tile, site, bel string) (*Cell, bool)
	NetThroughPIP(tile, input, output string) (*Net, bool)
	NetDrivingNode(tile, node string) (*Net, bool)
	RouteGraph(net *Net) *RouteGraph
}
