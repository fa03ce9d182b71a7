package tilemap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/byuccl/bfat/devicedb"
)

// fakeSource is a trivial bitSource backed by a map, standing in for a
// bitstream.Bitstream in tests that only care about tilemap's own logic.
// Every frame reads as written; TestResourceAtUndefinedWhenFrameUnwritten
// below exercises the unwritten-frame path with its own bitSource.
type fakeSource map[devicedb.BitCoord]int

func (f fakeSource) Get(c devicedb.BitCoord) int      { return f[c] }
func (f fakeSource) IsWrittenFrame(frame uint32) bool { return true }

func writeFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	archDir := filepath.Join(root, "artix7")
	if err := os.MkdirAll(archDir, 0755); err != nil {
		t.Fatal(err)
	}

	// A two-source mux (A selected by bit 10_00 set, B selected by bit
	// 10_00 clear i.e. "!10_00") plus one SiteInit bit.
	segbitsINT := "INT_L.OMUX0.A 10_00\nINT_L.OMUX0.B !10_00\n"
	if err := os.WriteFile(filepath.Join(archDir, "segbits_int_l.db"), []byte(segbitsINT), 0644); err != nil {
		t.Fatal(err)
	}
	segbitsCLB := "SLICEL.SLICEL_X0.ALUT.INIT[00] 20_05\n"
	if err := os.WriteFile(filepath.Join(archDir, "segbits_slicel.db"), []byte(segbitsCLB), 0644); err != nil {
		t.Fatal(err)
	}

	tilegrid := `{
		"INT_L_X0Y0": {"type": "INT_L", "grid_x": 0, "grid_y": 0, "baseaddr": 16, "wordbase": 0},
		"SLICEL_X0Y0": {"type": "SLICEL", "grid_x": 1, "grid_y": 0, "baseaddr": 32, "wordbase": 0}
	}`
	if err := os.WriteFile(filepath.Join(archDir, "tilegrid.json"), []byte(tilegrid), 0644); err != nil {
		t.Fatal(err)
	}

	return root
}

func newTestTileMap(t *testing.T, src fakeSource) *TileMap {
	t.Helper()
	db, err := devicedb.Load(writeFixture(t), "xc7a100tcsg324-1")
	if err != nil {
		t.Fatalf("devicedb.Load: %v", err)
	}
	tm, err := New(db, src)
	if err != nil {
		t.Fatalf("tilemap.New: %v", err)
	}
	return tm
}

func TestMuxStateOfActiveAndInactive(t *testing.T) {
	coordA := devicedb.BitCoord{Frame: 16, Word: 10, Bit: 0}

	// bit set -> A selected, B excluded (its rule requires the bit clear).
	tm := newTestTileMap(t, fakeSource{coordA: 1})
	state, err := tm.MuxStateOf("INT_L_X0Y0", "OMUX0")
	if err != nil {
		t.Fatalf("MuxStateOf: %v", err)
	}
	if state.Kind != Active || state.Input != "A" {
		t.Errorf("expecting Active(A), got %+v", state)
	}

	// bit clear -> B selected.
	tm = newTestTileMap(t, fakeSource{coordA: 0})
	state, err = tm.MuxStateOf("INT_L_X0Y0", "OMUX0")
	if err != nil {
		t.Fatalf("MuxStateOf: %v", err)
	}
	if state.Kind != Active || state.Input != "B" {
		t.Errorf("expecting Active(B), got %+v", state)
	}
}

func TestResourceAtClassification(t *testing.T) {
	tm := newTestTileMap(t, fakeSource{})

	ref := tm.ResourceAt(devicedb.BitCoord{Frame: 16, Word: 10, Bit: 0})
	if ref.Kind != KindMuxRow && ref.Kind != KindMuxCol {
		// A two-source mux doesn't match any recognized row/col shape
		// (muxShape only classifies 12/16/18/20/24-source muxes), so its
		// bits are neither indexed as MuxRow/MuxCol nor as SiteInit.
		if ref.Kind != KindUnknown {
			t.Errorf("expecting Unknown classification for an unshaped 2-source mux bit, got %v", ref.Kind)
		}
	}

	ref = tm.ResourceAt(devicedb.BitCoord{Frame: 32, Word: 20, Bit: 5})
	if ref.Kind != KindSiteInit || ref.Site != "SLICEL_X0.ALUT.INIT[00]" {
		t.Errorf("expecting SiteInit for ALUT.INIT[00] bit, got %+v", ref)
	}

	ref = tm.ResourceAt(devicedb.BitCoord{Frame: 999, Word: 0, Bit: 0})
	if ref.Kind != KindUndefined {
		t.Errorf("expecting Undefined for a frame absent from the tilegrid, got %v", ref.Kind)
	}
}

func TestWithFlipsOverlayAndIdempotence(t *testing.T) {
	coordA := devicedb.BitCoord{Frame: 16, Word: 10, Bit: 0}
	base := fakeSource{coordA: 0}
	tm := newTestTileMap(t, base)

	flipped := tm.WithFlips([]devicedb.BitCoord{coordA})
	if flipped.Get(coordA) != 1 {
		t.Errorf("expecting flipped overlay to read 1 for a bit that is 0 in the base, got %d", flipped.Get(coordA))
	}
	// The base TileMap must be unaffected by the overlay.
	if tm.Get(coordA) != 0 {
		t.Errorf("base TileMap must not be mutated by WithFlips, got %d", tm.Get(coordA))
	}

	state, err := flipped.MuxStateOf("INT_L_X0Y0", "OMUX0")
	if err != nil {
		t.Fatalf("MuxStateOf: %v", err)
	}
	if state.Kind != Active || state.Input != "A" {
		t.Errorf("expecting flip to activate A, got %+v", state)
	}
}

// partiallyWrittenSource reports a fixed set of bit values but treats every
// frame as unwritten, modeling a bitstream that never touched a frame the
// device database still lists for the part (e.g. a partial bitstream).
type partiallyWrittenSource map[devicedb.BitCoord]int

func (f partiallyWrittenSource) Get(c devicedb.BitCoord) int      { return f[c] }
func (f partiallyWrittenSource) IsWrittenFrame(frame uint32) bool { return false }

func TestResourceAtUndefinedWhenFrameUnwritten(t *testing.T) {
	db, err := devicedb.Load(writeFixture(t), "xc7a100tcsg324-1")
	if err != nil {
		t.Fatalf("devicedb.Load: %v", err)
	}
	// Frame 32 is listed in the tilegrid, but the configuration stream
	// never wrote it; classification must still come back Undefined.
	tm, err := New(db, partiallyWrittenSource{})
	if err != nil {
		t.Fatalf("tilemap.New: %v", err)
	}

	ref := tm.ResourceAt(devicedb.BitCoord{Frame: 32, Word: 20, Bit: 5})
	if ref.Kind != KindUndefined {
		t.Errorf("expecting Undefined for a database-listed frame the stream never wrote, got %v", ref.Kind)
	}
}

func TestMuxStateOfUnknownTileOrMux(t *testing.T) {
	tm := newTestTileMap(t, fakeSource{})

	if _, err := tm.MuxStateOf("NOPE", "OMUX0"); err == nil {
		t.Errorf("expecting error for unknown tile")
	}
	if _, err := tm.MuxStateOf("INT_L_X0Y0", "NOPE"); err == nil {
		t.Errorf("expecting error for unknown mux")
	}
}
