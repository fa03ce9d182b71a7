package designmodel

import "testing"

func TestMemoryCellAt(t *testing.T) {
	cells := []*Cell{
		{Name: "lut1", Tile: "CLBLL_L_X0Y0", Site: "SLICE_X0Y0", Bel: "A6LUT", Type: "LUT4"},
	}
	m := NewMemory(cells, nil)

	c, ok := m.CellAt("CLBLL_L_X0Y0", "SLICE_X0Y0", "A6LUT")
	if !ok || c.Name != "lut1" {
		t.Fatalf("CellAt: expecting lut1, got %+v, ok=%v", c, ok)
	}

	if _, ok := m.CellAt("CLBLL_L_X0Y0", "SLICE_X0Y0", "B6LUT"); ok {
		t.Errorf("CellAt: expecting no cell at an unplaced bel")
	}
}

func TestMemoryNetThroughPIPAndDrivingNode(t *testing.T) {
	net := &Net{
		Name: "clk_net",
		PIPs: []PIP{
			{Tile: "INT_L_X0Y0", InputNode: "IN0", OutputNode: "OMUX0"},
		},
	}
	m := NewMemory(nil, []*Net{net})

	got, ok := m.NetThroughPIP("INT_L_X0Y0", "IN0", "OMUX0")
	if !ok || got != net {
		t.Errorf("NetThroughPIP: expecting clk_net, got %+v, ok=%v", got, ok)
	}

	if _, ok := m.NetThroughPIP("INT_L_X0Y0", "IN0", "OMUX1"); ok {
		t.Errorf("NetThroughPIP: expecting no match for an untraversed PIP")
	}

	drv, ok := m.NetDrivingNode("INT_L_X0Y0", "OMUX0")
	if !ok || drv != net {
		t.Errorf("NetDrivingNode: expecting clk_net to drive OMUX0, got %+v, ok=%v", drv, ok)
	}

	if _, ok := m.NetDrivingNode("INT_L_X0Y0", "IN0"); ok {
		t.Errorf("NetDrivingNode: IN0 is a PIP input, not a driven output; expecting no match")
	}
}

func TestMemoryRouteGraphBuildsAndCaches(t *testing.T) {
	net := &Net{
		Name: "data_net",
		PIPs: []PIP{
			{Tile: "T", InputNode: "A", OutputNode: "B"},
			{Tile: "T", InputNode: "B", OutputNode: "C"},
		},
		Sinks: []Sink{{Tile: "T", Node: "C", Site: "S", Bel: "D"}},
	}
	m := NewMemory([]*Cell{{Name: "ff1", Tile: "T", Site: "S", Bel: "D"}}, []*Net{net})

	g1 := m.RouteGraph(net)
	g2 := m.RouteGraph(net)
	if g1 != g2 {
		t.Errorf("expecting RouteGraph to cache and return the same graph on a second call")
	}

	a, ok := g1.NodeAt("T", "A")
	if !ok {
		t.Fatalf("expecting node A in the route graph")
	}
	if len(a.R) != 1 || a.R[0].Name != "B" {
		t.Errorf("expecting A to connect forward to B, got %+v", a.R)
	}

	c, ok := g1.NodeAt("T", "C")
	if !ok {
		t.Fatalf("expecting node C in the route graph")
	}
	if c.Sink == nil || c.Sink.Name != "ff1" {
		t.Errorf("expecting sink node C to be marked with cell ff1, got %+v", c.Sink)
	}
}

func TestRouteNodeConnectForwardIsBidirectional(t *testing.T) {
	a := &RouteNode{Tile: "T", Name: "A"}
	b := &RouteNode{Tile: "T", Name: "B"}
	a.ConnectForward(b)

	if len(a.R) != 1 || a.R[0] != b {
		t.Errorf("expecting a.R to contain b")
	}
	if len(b.L) != 1 || b.L[0] != a {
		t.Errorf("expecting b.L to contain a")
	}
}
