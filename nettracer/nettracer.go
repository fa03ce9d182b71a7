// Package nettracer implements forward tracing through a routed net's PIP
// graph from a disturbance point to every downstream sink cell.
//
// Grounded on netlist/walks.go's forward-traversal shape, rebuilt over
// internal/queue and internal/set instead of recursion so a depth bound
// can convert a detected cycle into a TraceOverflow advisory rather than a
// stack overflow.
package nettracer

import (
	"github.com/byuccl/bfat/designmodel"
	"github.com/byuccl/bfat/internal/queue"
	"github.com/byuccl/bfat/internal/set"
)

// DefaultMaxDepth bounds the number of route nodes the BFS dequeues before
// a trace is considered a runaway walk, matching the corpus's convention of
// a small, named constant rather than an unbounded loop.
const DefaultMaxDepth = 100000

// Result is the outcome of tracing forward from a PIP.
type Result struct {
	Sinks     set.Set // names of sink cells reached downstream
	Overflow  bool    // true if a cycle or the depth bound was hit
}

// TraceFromPIP walks graph forward from the output side of the given PIP,
// collecting every distinct sink cell reachable in the downstream
// subtree. It never re-enters the node the PIP was driven from (forward
// traversal only) and tolerates branching (multi-sink) nets by visiting
// every downstream edge.
func TraceFromPIP(graph *designmodel.RouteGraph, tile, inputNode, outputNode string, maxDepth int) Result {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	res := Result{Sinks: set.New()}

	start, ok := graph.NodeAt(tile, outputNode)
	if !ok {
		return res
	}

	visited := set.New(nodeID(tile, inputNode))
	q := queue.New()
	q.Push(start)
	visited.Add(nodeID(start.Tile, start.Name))

	steps := 0
	for !q.Empty() {
		steps++
		if steps > maxDepth {
			res.Overflow = true
			break
		}

		cur := q.Pop().(*designmodel.RouteNode)

		if cur.Sink != nil {
			res.Sinks.Add(cur.Sink.Name)
		}

		for _, next := range cur.R {
			id := nodeID(next.Tile, next.Name)
			if visited.Has(id) {
				res.Overflow = true
				continue
			}
			visited.Add(id)
			q.Push(next)
		}
	}

	return res
}

func nodeID(tile, name string) string {
	return tile + "/" + name
}
