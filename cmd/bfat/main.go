// Command bfat evaluates a bitstream fault bit list against a device
// database and design model, and writes a fault report and statistics
// footer.
//
// Grounded on sart/sart.go's flag layout, log-flag toggling, and
// stage-by-stage progress logging with elapsed-time timers.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"time"

	"github.com/byuccl/bfat/devicedb"
	"github.com/byuccl/bfat/faultevaluator"
	"github.com/byuccl/bfat/statistics"
	"github.com/byuccl/bfat/tilemap"

	"github.com/byuccl/bfat/bitstream"

	"gopkg.in/mgo.v2"
)

func main() {
	var dbRoot, part, bitsPath, designPath, faultsPath, outPath, cache, server string
	var debug, parallel, useBits bool

	flag.StringVar(&dbRoot, "db", "", "path to the Project X-Ray database tree (req.)")
	flag.StringVar(&part, "part", "", "part name, e.g. xc7a100tcsg324-1 (req.)")
	flag.StringVar(&bitsPath, "bitstream", "", "path to .bit or .bits input (req.)")
	flag.BoolVar(&useBits, "textual", false, "treat -bitstream as a pre-decoded .bits listing")
	flag.StringVar(&designPath, "design", "", "path to design snapshot JSON (req.)")
	flag.StringVar(&faultsPath, "faults", "", "path to fault bit list JSON (req.)")
	flag.StringVar(&outPath, "out", "", "path to write the fault report (default stdout)")
	flag.StringVar(&cache, "cache", "", "name of devicedb cache to use instead of -db")
	flag.StringVar(&server, "server", "localhost", "name of mongodb server, used only with -cache")
	flag.BoolVar(&debug, "debug", false, "enable debug mode")
	flag.BoolVar(&parallel, "parallel", false, "evaluate bit groups concurrently")

	flag.Parse()

	log.SetFlags(0)
	if debug {
		log.SetFlags(log.Lshortfile)
	}

	if part == "" || bitsPath == "" || designPath == "" || faultsPath == "" || (dbRoot == "" && cache == "") {
		flag.PrintDefaults()
		log.Fatal("Insufficient arguments")
	}

	start := time.Now()

	db := loadDeviceDB(dbRoot, cache, server, part)
	log.Printf("Loaded device database for %s. Elapsed: %s", part, time.Since(start))

	bs := loadBitstream(bitsPath, useBits)
	log.Printf("Loaded bitstream. Elapsed: %s", time.Since(start))

	tm, err := tilemap.New(db, bs)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Built tile map (%d tiles). Elapsed: %s", len(db.Grid()), time.Since(start))

	designFile, err := os.Open(designPath)
	if err != nil {
		log.Fatal(err)
	}
	dm, err := loadDesign(designFile)
	designFile.Close()
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Loaded design model. Elapsed: %s", time.Since(start))

	faultsFile, err := os.Open(faultsPath)
	if err != nil {
		log.Fatal(err)
	}
	groups, err := loadFaultBits(faultsFile)
	faultsFile.Close()
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Found %d bit groups.", len(groups))

	eval := &faultevaluator.Evaluator{TM: tm, DM: dm, Parallel: parallel}

	log.Println("Evaluating bit groups..")
	results, err := eval.EvaluateGroups(context.Background(), groups)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Evaluation complete. Elapsed: %s", time.Since(start))

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		out = f
	}

	if err := writeReport(out, results); err != nil {
		log.Fatal(err)
	}

	counters := statistics.New()
	for _, g := range results {
		counters.Update(g)
	}
	if err := counters.WriteFooter(out, time.Since(start)); err != nil {
		log.Fatal(err)
	}
}

func loadDeviceDB(dbRoot, cache, server, part string) *devicedb.DeviceDB {
	if cache == "" {
		db, err := devicedb.Load(dbRoot, part)
		if err != nil {
			log.Fatal(err)
		}
		return db
	}

	session, err := mgo.Dial(server)
	if err != nil {
		log.Fatal(err)
	}
	db, err := devicedb.LoadCache(session, cache, part)
	if err != nil {
		log.Fatal(err)
	}
	return db
}

func loadBitstream(path string, textual bool) *bitstream.Bitstream {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	if textual {
		bs, err := bitstream.ParseBits(f)
		if err != nil {
			log.Fatal(err)
		}
		return bs
	}

	bs, err := bitstream.ParseBit(f)
	if err != nil {
		log.Fatal(err)
	}
	return bs
}
