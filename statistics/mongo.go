package statistics

import (
	"fmt"

	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

// summaryDoc is the BSON shape a run's tally is saved as, grounded on
// rtl/mongo.go's InitMgo/cache/Save trio.
type summaryDoc struct {
	Part    string       `bson:"part"`
	Design  string       `bson:"design"`
	Stats   bson.M       `bson:"stats"`
}

// SaveSummary persists this run's tally to the given cache collection,
// keyed by part and design name, so later runs can compare without
// re-evaluating. Optional: callers that never dial a mongo session simply
// never call this.
func (c *Counters) SaveSummary(session *mgo.Session, cacheName, part, design string) error {
	coll := session.Copy().DB("bfat").C(cacheName + "_runs")

	doc := summaryDoc{Part: part, Design: design, Stats: bson.M{}}
	for _, stat := range order {
		doc.Stats[stat] = c.h[stat]
	}

	if err := coll.Insert(doc); err != nil {
		return fmt.Errorf("statistics: save summary: %w", err)
	}
	return nil
}
