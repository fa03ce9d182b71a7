package bitstream

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/byuccl/bfat/devicedb"
)

func TestParseBitsAndGet(t *testing.T) {
	input := "bit_00000010_000_00\nbit_00000010_000_01\nbit_00000010_001_31\n\n"

	bs, err := ParseBits(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseBits: %v", err)
	}

	if got := bs.Get(devicedb.BitCoord{Frame: 0x10, Word: 0, Bit: 0}); got != 1 {
		t.Errorf("Get(frame 0x10, word 0, bit 0) = %d, want 1", got)
	}
	if got := bs.Get(devicedb.BitCoord{Frame: 0x10, Word: 0, Bit: 2}); got != 0 {
		t.Errorf("Get(frame 0x10, word 0, bit 2) = %d, want 0", got)
	}
	if got := bs.Get(devicedb.BitCoord{Frame: 0x10, Word: 1, Bit: 31}); got != 1 {
		t.Errorf("Get(frame 0x10, word 1, bit 31) = %d, want 1", got)
	}
	if !bs.IsWrittenFrame(0x10) {
		t.Errorf("expecting frame 0x10 to be written")
	}
	if bs.IsWrittenFrame(0x20) {
		t.Errorf("frame 0x20 was never written")
	}
}

func TestParseBitsMalformed(t *testing.T) {
	if _, err := ParseBits(strings.NewReader("not_a_bit_token")); err == nil {
		t.Errorf("expecting error for malformed .bits token")
	}
}

func TestWriteBitsRoundTrip(t *testing.T) {
	input := "bit_00000010_000_00\nbit_00000010_000_01\nbit_00000020_003_15\n"

	bs, err := ParseBits(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseBits: %v", err)
	}

	var buf bytes.Buffer
	if err := bs.WriteBits(&buf); err != nil {
		t.Fatalf("WriteBits: %v", err)
	}

	bs2, err := ParseBits(&buf)
	if err != nil {
		t.Fatalf("ParseBits (round trip): %v", err)
	}

	for _, c := range []devicedb.BitCoord{
		{Frame: 0x10, Word: 0, Bit: 0},
		{Frame: 0x10, Word: 0, Bit: 1},
		{Frame: 0x20, Word: 3, Bit: 15},
	} {
		if bs.Get(c) != bs2.Get(c) {
			t.Errorf("round-trip mismatch at %v: before=%d after=%d", c, bs.Get(c), bs2.Get(c))
		}
	}
}

// buildMinimalBit assembles a tiny synthetic .bit payload: a sync word,
// an IDCODE write, then an FDRI write of a handful of frame words.
func buildMinimalBit(t *testing.T, idcode uint32, frameWords []uint32) []byte {
	t.Helper()
	var buf bytes.Buffer

	put32 := func(v uint32) {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], v)
		buf.Write(b[:])
	}

	// padding before the sync word, as real .bit files carry a header.
	put32(0x00000000)
	put32(syncWord)

	// Type-1 write, register 0x0C (IDCODE), word count 1.
	idcodeHdr := uint32(1)<<29 | uint32(2)<<27 | uint32(0x0C)<<13 | 1
	put32(idcodeHdr)
	put32(idcode)

	// Type-1 write, register 0x02 (FDRI), word count 0 (switches register
	// context; the actual payload rides on the following type-2 packet).
	fdriHdr := uint32(1)<<29 | uint32(2)<<27 | uint32(0x02)<<13 | 0
	put32(fdriHdr)

	// Type-2 write carrying the FDRI payload.
	type2Hdr := uint32(2)<<29 | uint32(2)<<27 | uint32(len(frameWords))
	put32(type2Hdr)
	for _, w := range frameWords {
		put32(w)
	}

	return buf.Bytes()
}

func TestParseBit(t *testing.T) {
	data := buildMinimalBit(t, 0x0362D093, []uint32{0xFFFFFFFF, 0x00000001})

	bs, err := ParseBit(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseBit: %v", err)
	}

	if bs.PartID() != "xc7a100t" {
		t.Errorf("PartID() = %q, want xc7a100t", bs.PartID())
	}
	if bs.Get(devicedb.BitCoord{Frame: 0, Word: 0, Bit: 0}) != 1 {
		t.Errorf("expecting frame 0 word 0 bit 0 set from 0xFFFFFFFF")
	}
	if bs.Get(devicedb.BitCoord{Frame: 0, Word: 1, Bit: 0}) != 1 {
		t.Errorf("expecting frame 0 word 1 bit 0 set from 0x00000001")
	}
	if bs.Get(devicedb.BitCoord{Frame: 0, Word: 1, Bit: 1}) != 0 {
		t.Errorf("expecting frame 0 word 1 bit 1 unset")
	}
}

func TestParseBitNoSyncWord(t *testing.T) {
	if _, err := ParseBit(bytes.NewReader([]byte{0, 1, 2, 3})); err == nil {
		t.Errorf("expecting error when no sync word is present")
	}
}
