package histogram

import (
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	h := New()
	if h == nil {
		t.Errorf("Expecting a non-nil histogram. Got nil.")
	}
}

func ExampleHistogram_Add() {
	h := New()

	h.Add(1)
	h.Add(1)
	h.Add(2)
	h.Add(2)
	h.Add(3)
	h.Add("hello")
	h.Add("hello")
	h.Add("hello")
	h.Add("hello")

	fmt.Println(h)

	// Unordered output:
	// 1: 2
	// 2: 2
	// 3: 1
	// hello: 4
}

func TestAddN(t *testing.T) {
	h := New()

	h.Add("x")
	h.AddN("x", 3)
	h.AddN("y", 5)

	if h["x"] != 4 {
		t.Errorf("Expecting count 4 for x after Add+AddN(3). Got %d", h["x"])
	}
	if h["y"] != 5 {
		t.Errorf("Expecting count 5 for y after AddN(5). Got %d", h["y"])
	}
}

func ExampleHistogram_Merge() {
	h := New()

	h.Add(1)
	h.Add(1)
	h.Add(2)
	h.Add(2)
	h.Add(3)
	h.Add("hello")
	h.Add("hello")
	h.Add("hello")
	h.Add("hello")

	w := New()

	w.Add("hello")
	w.Add(4)

	h.Merge(w)

	fmt.Println(h)

	// Unordered output:
	// 1: 2
	// 2: 2
	// 3: 1
	// 4: 1
	// hello: 5
}
