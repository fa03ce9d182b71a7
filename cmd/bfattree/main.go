// Command bfattree prints the downstream routing tree reached from a PIP,
// for debugging a net's route or a nettracer result by hand.
//
// Grounded on hier/hier.go and cmd/tree/tree.go's indentation-by-depth
// recursive walk, retargeted from an RTL instance hierarchy to a routed
// net's RouteGraph.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/byuccl/bfat/designmodel"
)

var indent = "|   "

func tree(prefix string, level, upto int, node *designmodel.RouteNode, visited map[*designmodel.RouteNode]bool) {
	if upto > 0 && level > upto {
		return
	}
	if visited[node] {
		log.Printf("%s%s/%s (cycle)", prefix, node.Tile, node.Name)
		return
	}
	visited[node] = true

	label := node.Tile + "/" + node.Name
	if node.Sink != nil {
		label += " -> " + node.Sink.Name
	}
	log.Printf("%s%s", prefix, label)

	for _, next := range node.R {
		tree(prefix+indent, level+1, upto, next, visited)
	}
}

func main() {
	var designPath, netName, tile, fromNode string
	var upto int

	flag.StringVar(&designPath, "design", "", "path to design snapshot JSON (req.)")
	flag.StringVar(&netName, "net", "", "name of net to explore (req.)")
	flag.StringVar(&tile, "tile", "", "tile of the PIP output node to start from (req.)")
	flag.StringVar(&fromNode, "node", "", "name of the PIP output node to start from (req.)")
	flag.IntVar(&upto, "upto", -1, "depth to which the tree is printed; -1 for full tree")

	flag.Parse()

	log.SetFlags(0)

	if designPath == "" || netName == "" || tile == "" || fromNode == "" {
		flag.PrintDefaults()
		log.Fatal("Insufficient arguments")
	}

	f, err := os.Open(designPath)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	var snap struct {
		Cells []struct {
			Name string `json:"name"`
			Tile string `json:"tile"`
			Site string `json:"site"`
			Bel  string `json:"bel"`
		} `json:"cells"`
		Nets []struct {
			Name  string `json:"name"`
			Sinks []struct {
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
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		log.Fatal(err)
	}

	cells := make([]*designmodel.Cell, len(snap.Cells))
	for i, c := range snap.Cells {
		cells[i] = &designmodel.Cell{Name: c.Name, Tile: c.Tile, Site: c.Site, Bel: c.Bel}
	}

	var net *designmodel.Net
	for _, n := range snap.Nets {
		if n.Name != netName {
			continue
		}
		pips := make([]designmodel.PIP, len(n.PIPs))
		for i, p := range n.PIPs {
			pips[i] = designmodel.PIP{Tile: p.Tile, InputNode: p.In, OutputNode: p.Out}
		}
		sinks := make([]designmodel.Sink, len(n.Sinks))
		for i, s := range n.Sinks {
			sinks[i] = designmodel.Sink{Tile: s.Tile, Node: s.Node, Site: s.Site, Bel: s.Bel}
		}
		net = &designmodel.Net{Name: n.Name, Sinks: sinks, PIPs: pips}
		break
	}
	if net == nil {
		log.Fatalf("net %s not found", netName)
	}

	dm := designmodel.NewMemory(cells, []*designmodel.Net{net})
	graph := dm.RouteGraph(net)

	start, ok := graph.NodeAt(tile, fromNode)
	if !ok {
		log.Fatalf("node %s/%s not on net %s's route", tile, fromNode, netName)
	}

	tree("", 0, upto, start, make(map[*designmodel.RouteNode]bool))
}
