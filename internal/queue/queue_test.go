package queue

import "testing"

func TestPushPopOrder(t *testing.T) {
	testcases := []struct {
		inp []int
		exp []int
	}{
		{[]int{}, []int{}},
		{[]int{1}, []int{1}},
		{[]int{1, 2}, []int{1, 2}},
		{[]int{1, 2, 3}, []int{1, 2, 3}},
	}

	for i, tc := range testcases {
		q := New()

		for _, v := range tc.inp {
			q.Push(v)
		}

		var got []int
		for !q.Empty() {
			got = append(got, q.Pop().(int))
		}

		if len(got) != len(tc.exp) {
			t.Errorf("Test %d: expected %d values, got %d: %v", i, len(tc.exp), len(got), got)
			continue
		}
		for j, v := range got {
			if tc.exp[j] != v {
				t.Errorf("Test %d: expected %v, got %v", i, tc.exp, got)
			}
		}
	}
}

func TestPop(t *testing.T) {
	testcases := []struct {
		inp []int
		val interface{}
	}{
		{[]int{}, nil},
		{[]int{1}, 1},
		{[]int{2, 2}, 2},
		{[]int{1, 2, 3}, 1},
	}

	for i, tc := range testcases {
		q := New()

		for _, v := range tc.inp {
			q.Push(v)
		}

		if v := q.Pop(); v != tc.val {
			t.Errorf("Test %d: expected %v, got %v", i, tc.val, v)
		}
	}
}

func TestFIFOOrderWithRouteNodes(t *testing.T) {
	// nettracer pushes *designmodel.RouteNode pointers, not ints; confirm
	// the queue preserves push order for arbitrary interface{} values.
	type node struct{ name string }
	a, b, c := &node{"a"}, &node{"b"}, &node{"c"}

	q := New()
	q.Push(a)
	q.Push(b)
	q.Push(c)

	if got := q.Pop().(*node); got != a {
		t.Errorf("Expected first pop to return a, got %v", got)
	}
	if got := q.Pop().(*node); got != b {
		t.Errorf("Expected second pop to return b, got %v", got)
	}
}

func TestEmpty(t *testing.T) {
	q := New()

	if !q.Empty() {
		t.Errorf("Expecting empty queue. Got non-empty.")
	}

	q.Push(1)

	if q.Empty() {
		t.Errorf("Expecting non-empty queue. Got empty.")
	}

	q.Pop()

	if !q.Empty() {
		t.Errorf("Expecting empty queue. Got non-empty.")
	}
}
