package designmodel

// Memory is the in-tree reference Provider: a plain in-memory index built
// from a fully-parsed design snapshot (cells, nets, and each net's PIP
// sequence). Grounded on rtl.Module's straightforward map-of-slices
// indexing rather than any lazy/streaming design, since a routed design's
// full cell/net list is small relative to a device database.
type Memory struct {
	cells map[string]*Cell // keyed by "tile/site/bel"
	nets  map[string]*Net  // keyed by net name

	// pipIndex maps a (tile, input, output) PIP to the net that
	// traverses it, populated once at construction from each net's PIPs.
	pipIndex map[string]*Net

	// driveIndex maps (tile, node) to the net whose route reaches that
	// node as a PIP output.
	driveIndex map[string]*Net
}

// NewMemory builds a Memory Provider from cells and nets. Each given net's
// RouteGraph is built here and cached on the Net itself, so RouteGraph
// calls on those nets afterwards only read.
func NewMemory(cells []*Cell, nets []*Net) *Memory {
	m := &Memory{
		cells:      make(map[string]*Cell),
		nets:       make(map[string]*Net),
		pipIndex:   make(map[string]*Net),
		driveIndex: make(map[string]*Net),
	}

	for _, c := range cells {
		m.cells[cellKey(c.Tile, c.Site, c.Bel)] = c
	}

	for _, n := range nets {
		m.nets[n.Name] = n
		for _, p := range n.PIPs {
			m.pipIndex[pipKey(p.Tile, p.InputNode, p.OutputNode)] = n
			m.driveIndex[nodeKey(p.Tile, p.OutputNode)] = n
		}
	}

	for _, n := range nets {
		m.RouteGraph(n)
	}

	return m
}

func cellKey(tile, site, bel string) string {
	return tile + "/" + site + "/" + bel
}

func pipKey(tile, input, output string) string {
	return tile + "/" + input + "->" + output
}

func (m *Memory) CellAt(tile, site, bel string) (*Cell, bool) {
	c, ok := m.cells[cellKey(tile, site, bel)]
	return c, ok
}

func (m *Memory) NetThroughPIP(tile, input, output string) (*Net, bool) {
	n, ok := m.pipIndex[pipKey(tile, input, output)]
	return n, ok
}

func (m *Memory) NetDrivingNode(tile, node string) (*Net, bool) {
	n, ok := m.driveIndex[nodeKey(tile, node)]
	return n, ok
}

// RouteGraph builds (and caches) the net's routing tree by connecting each
// PIP's input node to its output node, then marking each sink's route node
// with the cell placed at that pin. The route node is found via its
// tile/node key and the cell via its own tile/site/bel key; a Sink ties the
// two together rather than conflating one string into both key shapes.
func (m *Memory) RouteGraph(net *Net) *RouteGraph {
	if net.graph != nil {
		return net.graph
	}

	g := &RouteGraph{Net: net, nodes: make(map[string]*RouteNode)}

	getNode := func(tile, name string) *RouteNode {
		key := nodeKey(tile, name)
		n, ok := g.nodes[key]
		if !ok {
			n = &RouteNode{Tile: tile, Name: name}
			g.nodes[key] = n
		}
		return n
	}

	for _, p := range net.PIPs {
		in := getNode(p.Tile, p.InputNode)
		out := getNode(p.Tile, p.OutputNode)
		in.ConnectForward(out)
	}

	for _, s := range net.Sinks {
		n, ok := g.nodes[nodeKey(s.Tile, s.Node)]
		if !ok {
			continue
		}
		if c, ok := m.cells[cellKey(s.Tile, s.Site, s.Bel)]; ok {
			n.Sink = c
		}
	}

	net.graph = g
	return g
}
