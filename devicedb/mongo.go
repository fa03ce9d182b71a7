package devicedb

import (
	"fmt"

	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

// cacheDoc is the BSON shape a loaded DeviceDB is cached as, grounded on
// rtl/mongo.go's InitMgo/cache/Save trio: one document per part, keyed by
// part name, so a later run can skip re-walking the Project X-Ray tree.
type cacheDoc struct {
	Part  string                 `bson:"part"`
	Types map[string]*TileType   `bson:"types"`
	Grid  []GridEntry            `bson:"grid"`
}

// SaveCache persists this DeviceDB under the given cache collection name,
// keyed by part.
func (db *DeviceDB) SaveCache(session *mgo.Session, cacheName string) error {
	coll := session.Copy().DB("bfat").C(cacheName + "_devicedb")

	doc := cacheDoc{Part: db.Part, Grid: db.grid, Types: db.types}
	_, err := coll.Upsert(bson.M{"part": db.Part}, doc)
	if err != nil {
		return fmt.Errorf("devicedb: save cache: %w", err)
	}
	return nil
}

// LoadCache loads a previously-saved DeviceDB from the given cache
// collection, rebuilding the definedFrames index from the cached grid as
// Load does from disk. Each TileType's Family comes back as it was saved;
// the family rule table itself is not reloaded.
func LoadCache(session *mgo.Session, cacheName, part string) (*DeviceDB, error) {
	coll := session.Copy().DB("bfat").C(cacheName + "_devicedb")

	var doc cacheDoc
	if err := coll.Find(bson.M{"part": part}).One(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s not cached: %v", ErrUnsupportedPart, part, err)
	}

	db := &DeviceDB{
		Part:          doc.Part,
		types:         doc.Types,
		grid:          doc.Grid,
		definedFrames: make(map[uint32]bool),
	}
	for _, g := range db.grid {
		db.definedFrames[g.FrameBase] = true
	}

	return db, nil
}
