package set

import "testing"

func TestAddHas(t *testing.T) {
	s := New()
	if s.Has("a") {
		t.Errorf("expecting empty set to not have 'a'")
	}
	s.Add("a")
	if !s.Has("a") {
		t.Errorf("expecting set to have 'a' after Add")
	}
}

func TestNewWithElements(t *testing.T) {
	s := New("a", "b", "a")
	if len(s.List()) != 2 {
		t.Errorf("expecting 2 distinct elements, got %v", s.List())
	}
	if !s.Has("a") || !s.Has("b") {
		t.Errorf("expecting a and b present, got %v", s.List())
	}
}

func TestSortIsAscending(t *testing.T) {
	s := New("net_c", "net_a", "net_b")
	got := s.Sort()
	want := []string{"net_a", "net_b", "net_c"}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("Sort()[%d] = %q, want %q (full: %v)", i, got[i], w, got)
		}
	}
}
