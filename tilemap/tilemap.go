// Package tilemap binds a devicedb.DeviceDB's static tile-type tables to a
// bitstream.Bitstream's live bit values, materializing per-tile routing-mux
// state and providing the flip overlay fault evaluation runs against.
//
// Grounded on original_source/lib/tile.py's Tile.eval_connections (bit-rule
// evaluation against current configuration values), generalized to compare
// a baseline source against an overlay instead of mutating a single
// config_bits map in place, and on lib/define_bit.py's frame/word/bit <->
// tile-local-offset conversion math.
package tilemap

import (
	"fmt"
	"sort"

	"github.com/byuccl/bfat/devicedb"
)

// bitSource is satisfied by both a bitstream.Bitstream and an Overlay, so
// that mux/site evaluation code is agnostic to whether it is reading the
// baseline or a flipped view. IsWrittenFrame reports whether the
// configuration stream actually wrote the frame at all, independent of
// whether the device database lists that frame address for the part.
type bitSource interface {
	Get(devicedb.BitCoord) int
	IsWrittenFrame(frame uint32) bool
}

// ResourceKind is the outcome of classifying a single bitstream coordinate,
// classify(coord) is exactly one of these six kinds.
type ResourceKind int

const (
	KindSiteInit ResourceKind = iota
	KindMuxRow
	KindMuxCol
	KindOther
	KindUnknown
	KindUndefined
)

func (k ResourceKind) String() string {
	switch k {
	case KindSiteInit:
		return "SiteInit"
	case KindMuxRow:
		return "MuxRow"
	case KindMuxCol:
		return "MuxCol"
	case KindOther:
		return "Other"
	case KindUnknown:
		return "Unknown"
	case KindUndefined:
		return "Undefined"
	default:
		return "?"
	}
}

// ResourceRef identifies what a single bitstream coordinate controls.
type ResourceRef struct {
	Kind ResourceKind
	Tile string
	Mux  string // sink node name, set for MuxRow/MuxCol
	Site string // resource name, set for SiteInit (e.g. "SLICEM_X0.CLUT.INIT[00]")
}

// MuxStateKind classifies a routing mux's current selection.
type MuxStateKind int

const (
	Inactive MuxStateKind = iota
	Active
	Conflicted
)

// MuxState is the result of evaluating a routing mux's encoding bits
// against a bitSource.
type MuxState struct {
	Kind   MuxStateKind
	Input  string   // set when Kind == Active
	Inputs []string // sorted, set when Kind == Conflicted (len > 1)
}

// Tile is one instantiated tile bound to the bitstream.
type Tile struct {
	Name      string
	Type      *devicedb.TileType
	FrameBase uint32
}

// TileMap is the read-only, per-run join of a DeviceDB and a Bitstream.
type TileMap struct {
	db     *devicedb.DeviceDB
	tiles  map[string]*Tile
	source bitSource
	index  map[devicedb.BitCoord]ResourceRef
}

// New builds a TileMap for every tile in db's grid, bound to src.
func New(db *devicedb.DeviceDB, src bitSource) (*TileMap, error) {
	tm := &TileMap{
		db:     db,
		tiles:  make(map[string]*Tile),
		source: src,
		index:  make(map[devicedb.BitCoord]ResourceRef),
	}

	for _, g := range db.Grid() {
		tt, ok := db.TileType(g.TileType)
		if !ok {
			return nil, fmt.Errorf("tilemap: tile %s references unknown type %s", g.TileName, g.TileType)
		}
		tile := &Tile{Name: g.TileName, Type: tt, FrameBase: g.FrameBase}
		tm.tiles[g.TileName] = tile
		tm.indexTile(tile)
	}

	return tm, nil
}

func (tm *TileMap) indexTile(tile *Tile) {
	for sink, mux := range tile.Type.Muxes {
		for _, bits := range mux.RowBits {
			if coord, ok := localToCoord(tile, bits); ok {
				tm.index[coord] = ResourceRef{Kind: KindMuxRow, Tile: tile.Name, Mux: sink}
			}
		}
		for _, bits := range mux.ColBits {
			if coord, ok := localToCoord(tile, bits); ok {
				tm.index[coord] = ResourceRef{Kind: KindMuxCol, Tile: tile.Name, Mux: sink}
			}
		}
	}
	for rsrc, bits := range tile.Type.Resources {
		for _, b := range bits {
			word, bit, ok := devicedb.ParseLocalBit(trimNeg(b))
			if !ok {
				continue
			}
			coord := devicedb.BitCoord{Frame: tile.FrameBase, Word: word, Bit: bit}
			tm.index[coord] = ResourceRef{Kind: KindSiteInit, Tile: tile.Name, Site: rsrc}
		}
	}
}

func trimNeg(b string) string {
	if len(b) > 0 && b[0] == '!' {
		return b[1:]
	}
	return b
}

func localToCoord(tile *Tile, localName string) (devicedb.BitCoord, bool) {
	word, bit, ok := devicedb.ParseLocalBit(trimNeg(localName))
	if !ok {
		return devicedb.BitCoord{}, false
	}
	return devicedb.BitCoord{Frame: tile.FrameBase, Word: word, Bit: bit}, true
}

// ResourceAt resolves a bitstream coordinate to the resource it belongs to.
// A coordinate classifies as Undefined unless its frame is both listed in
// the device database for this part and actually written by the
// configuration stream; either condition failing alone leaves the frame
// undefined for this run.
func (tm *TileMap) ResourceAt(coord devicedb.BitCoord) ResourceRef {
	if !tm.db.IsDefinedFrame(coord.Frame) || !tm.source.IsWrittenFrame(coord.Frame) {
		return ResourceRef{Kind: KindUndefined}
	}
	if ref, ok := tm.index[coord]; ok {
		return ref
	}
	return ResourceRef{Kind: KindUnknown}
}

// MuxStateOf evaluates a routing mux's currently active input(s) against
// this TileMap's bit source.
func (tm *TileMap) MuxStateOf(tileName, sink string) (MuxState, error) {
	tile, ok := tm.tiles[tileName]
	if !ok {
		return MuxState{}, fmt.Errorf("tilemap: unknown tile %s", tileName)
	}
	mux, ok := tile.Type.Muxes[sink]
	if !ok {
		return MuxState{}, fmt.Errorf("tilemap: tile %s has no mux %s", tileName, sink)
	}

	seen := make(map[string]bool)
	var active []string
	for input, bits := range mux.Sources() {
		if tm.rulesMatch(tile, bits) {
			active = append(active, input)
			seen[input] = true
		}
	}
	for input := range mux.SpecialSources() {
		if !seen[input] {
			active = append(active, input)
		}
	}

	sort.Strings(active)
	switch len(active) {
	case 0:
		return MuxState{Kind: Inactive}, nil
	case 1:
		return MuxState{Kind: Active, Input: active[0]}, nil
	default:
		return MuxState{Kind: Conflicted, Inputs: active}, nil
	}
}

func (tm *TileMap) rulesMatch(tile *Tile, bits []string) bool {
	for _, b := range bits {
		neg := false
		name := b
		if len(name) > 0 && name[0] == '!' {
			neg = true
			name = name[1:]
		}
		coord, ok := localToCoord(tile, name)
		if !ok {
			return false
		}
		val := tm.source.Get(coord)
		if neg {
			if val != 0 {
				return false
			}
		} else if val != 1 {
			return false
		}
	}
	return true
}

// Get returns the current value of a single configuration bit, reading
// through the overlay if one is in effect.
func (tm *TileMap) Get(c devicedb.BitCoord) int {
	return tm.source.Get(c)
}

// Tile returns the bound tile instance, if any.
func (tm *TileMap) Tile(name string) (*Tile, bool) {
	t, ok := tm.tiles[name]
	return t, ok
}
