package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/byuccl/bfat/designmodel"
)

// designSnapshot is a minimal JSON design-model shape sufficient to drive
// the evaluator end to end without a real dcp reader (out of core scope).
// A production deployment plugs in one of the two dcp readers in place of
// loadDesign.
type designSnapshot struct {
	Cells []struct {
		Name string `json:"name"`
		Tile string `json:"tile"`
		Site string `json:"site"`
		Bel  string `json:"bel"`
		Type string `json:"type"`
	} `json:"cells"`
	Nets []struct {
		Name   string `json:"name"`
		Driver string `json:"driver"`
		Sinks  []struct {
			Tile string `json:"tile"`
			Node string `json:"node"`
			Site string `json:"site"`
			Bel  string `json:"bel"`
		} `json:"sinks"`
		PIPs []struct {
			Tile string `json:"tile"`
			In   string `json:"in"`
			Out  string `json:"out"`
		} `json:"pips"`
	} `json:"nets"`
}

func loadDesign(r io.Reader) (designmodel.Provider, error) {
	var snap designSnapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("design: %w: %v", designmodel.ErrMissingCheckpoint, err)
	}

	cells := make([]*designmodel.Cell, len(snap.Cells))
	for i, c := range snap.Cells {
		cells[i] = &designmodel.Cell{Name: c.Name, Tile: c.Tile, Site: c.Site, Bel: c.Bel, Type: c.Type}
	}

	nets := make([]*designmodel.Net, len(snap.Nets))
	for i, n := range snap.Nets {
		pips := make([]designmodel.PIP, len(n.PIPs))
		for j, p := range n.PIPs {
			pips[j] = designmodel.PIP{Tile: p.Tile, InputNode: p.In, OutputNode: p.Out}
		}
		sinks := make([]designmodel.Sink, len(n.Sinks))
		for j, s := range n.Sinks {
			sinks[j] = designmodel.Sink{Tile: s.Tile, Node: s.Node, Site: s.Site, Bel: s.Bel}
		}
		nets[i] = &designmodel.Net{Name: n.Name, Driver: n.Driver, Sinks: sinks, PIPs: pips}
	}

	return designmodel.NewMemory(cells, nets), nil
}
