package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/byuccl/bfat/devicedb"
)

// loadFaultBits parses the fault bit list format: an ordered list of bit
// groups, each an ordered list of [frame_hex, word_decimal, bit_decimal]
// triples.
func loadFaultBits(r io.Reader) ([][]devicedb.BitCoord, error) {
	var raw [][][3]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("faultbits: malformed input: %w", err)
	}

	groups := make([][]devicedb.BitCoord, len(raw))
	for i, group := range raw {
		coords := make([]devicedb.BitCoord, len(group))
		for j, triple := range group {
			frame, err := strconv.ParseUint(triple[0], 16, 32)
			if err != nil {
				return nil, fmt.Errorf("faultbits: group %d bit %d: bad frame: %w", i, j, err)
			}
			word, err := strconv.ParseUint(triple[1], 10, 8)
			if err != nil {
				return nil, fmt.Errorf("faultbits: group %d bit %d: bad word: %w", i, j, err)
			}
			bit, err := strconv.ParseUint(triple[2], 10, 8)
			if err != nil {
				return nil, fmt.Errorf("faultbits: group %d bit %d: bad bit: %w", i, j, err)
			}
			coords[j] = devicedb.BitCoord{Frame: uint32(frame), Word: uint8(word), Bit: uint8(bit)}
		}
		groups[i] = coords
	}
	return groups, nil
}
