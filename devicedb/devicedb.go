// Package devicedb loads the static per-part tables describing tile types,
// site types, and routing-mux encodings from a Project X-Ray-shaped
// database tree, and exposes the BitCoord addressing used throughout the
// rest of the core.
//
// Grounded on original_source/lib/tile.py's Tile.populate_tile (segbits/
// ppips parsing) and RTMux.gen_mux/def_mux_type (row/col bit classification
// by source count), generalized from a per-design mutable Tile into a
// static per-tile-type table shared by every instance of that type.
package devicedb

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/byuccl/bfat/internal/classify"
)

// ErrUnsupportedPart is returned by Load when no database entry exists for
// the requested part.
var ErrUnsupportedPart = fmt.Errorf("devicedb: unsupported part")

// BitCoord globally identifies a single configuration-memory bit.
type BitCoord struct {
	Frame uint32
	Word  uint8
	Bit   uint8
}

func (c BitCoord) String() string {
	return fmt.Sprintf("bit_%08x_%03d_%02d", c.Frame, c.Word, c.Bit)
}

// RoutingMux describes one switchbox output node's selection encoding
// within a tile type. Row/column bit roles are opaque data loaded here and
// must never be special-cased by family name in evaluator logic (the
// family name itself is informational).
type RoutingMux struct {
	Sink    string
	Inputs  []string
	RowBits []string
	ColBits []string
	Family  string // one of 5-24, 2-20, 2-18, 5-16, 2-12, or "" if unrecognized

	// pips[input] is the set of local-bit names (possibly "!"-negated)
	// that must all match for that input to be selected.
	pips map[string][]string

	// specialPips[input] names an always-considered pip type (e.g.
	// "always" or "default") from ppips_<type>.db, for inputs that are
	// wired without a dedicated configuration bit.
	specialPips map[string]string
}

// Sources returns, per input node, the local-bit rules that must all match
// for that input to be selected. Callers must not mutate the result.
func (m *RoutingMux) Sources() map[string][]string {
	return m.pips
}

// SpecialSources returns inputs wired without a dedicated configuration
// bit (from ppips_<type>.db), keyed by pip type.
func (m *RoutingMux) SpecialSources() map[string]string {
	return m.specialPips
}

// TileType is the static, part-independent description of everything a
// tile of this type can do. Resources maps a resource name as it appears
// in segbits (e.g. "SLICEM_X0.CLUT.INIT[00]") to the local-bit rules that
// must all read 1 (or, "!"-prefixed, read 0) for that resource bit to be
// considered set — the mechanism behind named functional bits such as LUT
// INIT[i], exposed here exactly as Project X-Ray lists them rather than as
// a separately-typed SiteType, since the segbits files never group
// resources by site beyond the naming convention itself.
type TileType struct {
	Name      string
	Muxes     map[string]*RoutingMux // keyed by sink node
	Resources map[string][]string    // keyed by resource name

	// Family classifies the tile type's broad kind (INT, CLB, IOI3, ...)
	// via a regex table, mirroring typespecs.Match's "first match or
	// Unknown" contract. Exported (rather than accessor-guarded) so it
	// survives a SaveCache/LoadCache bson round-trip.
	Family string
}

// GridEntry is one instantiated tile in the part's layout.
type GridEntry struct {
	TileName string
	TileType string
	X, Y     int
	FrameBase uint32
	WordBase  uint8
}

// FrameSegment describes where a tile type's configuration bits live
// relative to the frame address assigned to its tile instance's column.
type FrameSegment struct {
	FrameDelta uint32
	WordOffset uint8
	WordCount  uint8
}

// DeviceDB is the immutable, part-specific set of tables loaded by Load.
type DeviceDB struct {
	Part  string
	types map[string]*TileType
	grid  []GridEntry
	// definedFrames records every frame address the part's tilegrid
	// names, regardless of whether the bitstream happens to write it.
	definedFrames map[uint32]bool
	families      classify.Rules
}

// Load reads <dbRoot>/<arch>/{segbits,ppips}_<type>.db and <dbRoot>/<arch>/tilegrid.json
// for the architecture implied by part, plus an optional family
// classification table at <dbRoot>/families.json.
func Load(dbRoot, part string) (*DeviceDB, error) {
	arch, err := archOf(part)
	if err != nil {
		return nil, err
	}

	archDir := filepath.Join(dbRoot, arch)
	if _, err := os.Stat(archDir); err != nil {
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedPart, part, arch)
	}

	db := &DeviceDB{
		Part:          part,
		types:         make(map[string]*TileType),
		definedFrames: make(map[uint32]bool),
	}

	if f, err := os.Open(filepath.Join(dbRoot, "families.json")); err == nil {
		defer f.Close()
		rules, err := classify.Load(f)
		if err != nil {
			return nil, fmt.Errorf("devicedb: load families: %w", err)
		}
		db.families = rules
	}

	grid, err := loadTileGrid(filepath.Join(archDir, "tilegrid.json"))
	if err != nil {
		return nil, fmt.Errorf("devicedb: load tilegrid: %w", err)
	}
	db.grid = grid

	seen := make(map[string]bool)
	for _, g := range grid {
		db.definedFrames[g.FrameBase] = true
		if seen[g.TileType] {
			continue
		}
		seen[g.TileType] = true

		tt, err := loadTileType(archDir, g.TileType)
		if err != nil {
			return nil, fmt.Errorf("devicedb: load tile type %s: %w", g.TileType, err)
		}
		if db.families != nil {
			tt.Family = db.families.Match(tt.Name)
		}
		db.types[g.TileType] = tt
	}

	return db, nil
}

func archOf(part string) (string, error) {
	switch {
	case strings.HasPrefix(part, "xc7a"):
		return "artix7", nil
	case strings.HasPrefix(part, "xc7k"):
		return "kintex7", nil
	case strings.HasPrefix(part, "xc7s"):
		return "spartan7", nil
	case strings.HasPrefix(part, "xc7z"):
		return "zynq7", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPart, part)
	}
}

// TileType returns the static description for a tile type name.
func (db *DeviceDB) TileType(name string) (*TileType, bool) {
	tt, ok := db.types[name]
	return tt, ok
}

// Grid returns every instantiated tile in the part's layout.
func (db *DeviceDB) Grid() []GridEntry {
	return db.grid
}

// Segment returns the frame/word region a tile type's configuration bits
// occupy relative to its instance's frame base. Tile types with no
// configuration bits (pure routing overlays) return a zero-width segment.
func (db *DeviceDB) Segment(tileType string) FrameSegment {
	tt, ok := db.types[tileType]
	if !ok || (len(tt.Muxes) == 0 && len(tt.Resources) == 0) {
		return FrameSegment{}
	}
	var maxWord uint8
	walk := func(bits []string) {
		for _, b := range bits {
			b = strings.TrimPrefix(b, "!")
			word, _, ok := parseLocalBitName(b)
			if ok && word > maxWord {
				maxWord = word
			}
		}
	}
	for _, m := range tt.Muxes {
		for _, rule := range m.pips {
			walk(rule)
		}
	}
	for _, rule := range tt.Resources {
		walk(rule)
	}
	return FrameSegment{FrameDelta: 0, WordOffset: 0, WordCount: maxWord + 1}
}

// IsDefinedFrame reports whether the part's tilegrid lists the given frame
// address at all, independent of whether the bitstream wrote it.
func (db *DeviceDB) IsDefinedFrame(frame uint32) bool {
	return db.definedFrames[frame]
}

// ParseLocalBit splits a segbits-style local bit name ("<word>_<bit>",
// e.g. "22_04") into its word and bit offsets.
func ParseLocalBit(name string) (word, bit uint8, ok bool) {
	return parseLocalBitName(name)
}

func parseLocalBitName(name string) (word, bit uint8, ok bool) {
	parts := strings.SplitN(name, "_", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	w, err1 := strconv.Atoi(parts[0])
	b, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return uint8(w), uint8(b), true
}

func loadTileGrid(path string) ([]GridEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var raw map[string]struct {
		Type      string `json:"type"`
		GridX     int    `json:"grid_x"`
		GridY     int    `json:"grid_y"`
		FrameBase uint32 `json:"baseaddr"`
		WordBase  uint8  `json:"wordbase"`
	}
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return nil, err
	}

	entries := make([]GridEntry, 0, len(raw))
	for name, t := range raw {
		entries = append(entries, GridEntry{
			TileName:  name,
			TileType:  t.Type,
			X:         t.GridX,
			Y:         t.GridY,
			FrameBase: t.FrameBase,
			WordBase:  t.WordBase,
		})
	}
	return entries, nil
}

// loadTileType parses segbits_<type>.db and, for INT tiles, ppips_<type>.db,
// mirroring Tile.populate_tile's two-pass read.
func loadTileType(archDir, tileType string) (*TileType, error) {
	tt := &TileType{
		Name:      tileType,
		Muxes:     make(map[string]*RoutingMux),
		Resources: make(map[string][]string),
	}

	segPath := filepath.Join(archDir, "segbits_"+strings.ToLower(tileType)+".db")
	if f, err := os.Open(segPath); err == nil {
		defer f.Close()
		if err := parseSegbits(f, tt); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if isInterconnect(tileType) {
		ppipsPath := filepath.Join(archDir, "ppips_"+strings.ToLower(tileType)+".db")
		if f, err := os.Open(ppipsPath); err == nil {
			defer f.Close()
			if err := parsePpips(f, tt); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}

		for sink, mux := range tt.Muxes {
			mux.Sink = sink
			classifyMux(mux)
		}
	}

	return tt, nil
}

// parsePpips reads ppips_<type>.db, adding sources that connect to a sink
// without a dedicated configuration bit (always-active or default pips).
func parsePpips(r io.Reader, tt *TileType) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		header := strings.Split(fields[0], ".")
		if len(header) < 3 {
			continue
		}
		sink, src, pipType := header[1], header[2], fields[1]

		mux, ok := tt.Muxes[sink]
		if !ok {
			mux = &RoutingMux{pips: make(map[string][]string), specialPips: make(map[string]string)}
			tt.Muxes[sink] = mux
		}
		if mux.specialPips == nil {
			mux.specialPips = make(map[string]string)
		}
		mux.specialPips[src] = pipType
		if _, exists := mux.pips[src]; !exists {
			mux.Inputs = append(mux.Inputs, src)
		}
	}
	return scanner.Err()
}

func isInterconnect(tileType string) bool {
	return tileType == "INT_L" || tileType == "INT_R"
}

func parseSegbits(r io.Reader, tt *TileType) error {
	interconnect := isInterconnect(tt.Name)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		header := strings.Split(fields[0], ".")
		bits := fields[1:]

		if interconnect {
			sink := header[1]
			src := "Config Bit"
			if len(header) > 2 {
				src = header[2]
			}
			mux, ok := tt.Muxes[sink]
			if !ok {
				mux = &RoutingMux{pips: make(map[string][]string)}
				tt.Muxes[sink] = mux
			}
			mux.pips[src] = append([]string{}, bits...)
			mux.Inputs = append(mux.Inputs, src)
		} else {
			rsrc := strings.Join(header[1:], ".")
			tt.Resources[rsrc] = append([]string{}, bits...)
		}
	}
	return scanner.Err()
}

// classifyMux assigns row/col bit roles by how many distinct sources
// reference each local-bit name, per RTMux.def_mux_type/gen_mux.
func classifyMux(mux *RoutingMux) {
	counts := make(map[string]int)
	for _, bits := range mux.pips {
		for _, b := range bits {
			counts[strings.TrimPrefix(b, "!")]++
		}
	}

	numSrcs := len(mux.pips)
	rowCount, colCount := muxShape(numSrcs)
	if rowCount == 0 && colCount == 0 {
		return
	}
	mux.Family = muxFamily(numSrcs)

	for bit, n := range counts {
		switch n {
		case colCount:
			mux.ColBits = append(mux.ColBits, bit)
		case rowCount:
			mux.RowBits = append(mux.RowBits, bit)
		}
	}
}

// muxShape returns (row-bit inclusion count, col-bit inclusion count) for a
// mux with the given number of sources, per RTMux.def_mux_type.
func muxShape(numSrcs int) (row, col int) {
	switch numSrcs {
	case 24:
		return 4, 24
	case 20:
		return 5, 4
	case 18:
		return 6, 3
	case 16:
		return 4, 16
	case 12:
		return 4, 3
	default:
		return 0, 0
	}
}

func muxFamily(numSrcs int) string {
	switch numSrcs {
	case 24:
		return "5-24"
	case 20:
		return "2-20"
	case 18:
		return "2-18"
	case 16:
		return "5-16"
	case 12:
		return "2-12"
	default:
		return ""
	}
}
