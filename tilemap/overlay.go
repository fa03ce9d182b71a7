package tilemap

import "github.com/byuccl/bfat/devicedb"

// Overlay is a shadow bitSource that reports the baseline value for every
// coordinate except those explicitly flipped, without copying the
// underlying bitstream. WithFlips returns a TileMap backed by one of these,
// without copying the base bitstream.
type Overlay struct {
	base  bitSource
	flips map[devicedb.BitCoord]bool
}

func (o *Overlay) Get(c devicedb.BitCoord) int {
	if o.flips[c] {
		if o.base.Get(c) == 1 {
			return 0
		}
		return 1
	}
	return o.base.Get(c)
}

// IsWrittenFrame delegates to the base bitstream: flipping a bit never
// changes which frames the configuration stream wrote.
func (o *Overlay) IsWrittenFrame(frame uint32) bool {
	return o.base.IsWrittenFrame(frame)
}

// WithFlips returns a new TileMap sharing this one's tile tables but
// reading through an Overlay with the given coordinates toggled. The
// receiver is unmodified: flip idempotence holds
// because the overlay is scoped to the returned TileMap alone.
func (tm *TileMap) WithFlips(group []devicedb.BitCoord) *TileMap {
	flips := make(map[devicedb.BitCoord]bool, len(group))
	for _, c := range group {
		flips[c] = true
	}

	return &TileMap{
		db:     tm.db,
		tiles:  tm.tiles,
		index:  tm.index,
		source: &Overlay{base: tm.source, flips: flips},
	}
}
