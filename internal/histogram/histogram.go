// Package histogram implements a simple observation counter keyed by an
// arbitrary comparable label, used by statistics to tally fault counts per
// bucket.
package histogram

import (
	"fmt"
	"strings"
)

type Histogram map[interface{}]int

func New() Histogram {
	return make(Histogram)
}

func (h Histogram) Add(obs interface{}) {
	h[obs]++
}

// AddN adds n to the count for obs, for buckets counted in units other
// than one (e.g. each comma-separated name in a fault message).
func (h Histogram) AddN(obs interface{}, n int) {
	h[obs] += n
}

func (h Histogram) Merge(w Histogram) {
	for bin, count := range w {
		h[bin] += count
	}
}

func (h Histogram) String() (str string) {
	for bin, count := range h {
		str += fmt.Sprintf("%v: %d\n", bin, count)
	}
	str = strings.TrimSuffix(str, "\n")
	return
}
