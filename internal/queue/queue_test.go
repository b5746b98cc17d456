package queue

import (
	"sync"
	"testing"
)

func TestQueue_New(t *testing.T) {
	q := New[string]()
	if q == nil {
		t.Fatal("expected non-nil queue")
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
	if q.Len() != 0 {
		t.Errorf("expected length 0, got %d", q.Len())
	}
}

func TestQueue_PushPop(t *testing.T) {
	q := New[string]()

	if _, ok := q.Pop(); ok {
		t.Error("expected pop from empty queue to fail")
	}

	q.Push("inspect", "select-item")
	first, ok := q.Pop()
	if !ok || first != "inspect" {
		t.Errorf("expected inspect, got %q (ok=%v)", first, ok)
	}
	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}
}

func TestQueue_BoundedDropsOldest(t *testing.T) {
	q := NewBounded[int](3)

	if n := q.Push(1, 2, 3); n != 0 {
		t.Errorf("expected no drops, got %d", n)
	}
	if n := q.Push(4, 5); n != 2 {
		t.Errorf("expected 2 drops, got %d", n)
	}
	got := q.GetAndEmpty()
	want := []int{3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if q.Dropped() != 2 {
		t.Errorf("expected 2 dropped in total, got %d", q.Dropped())
	}
}

func TestQueue_Requeue(t *testing.T) {
	q := NewBounded[int](4)
	q.Push(1, 2)
	taken := q.GetAndEmpty()
	q.Push(3, 4, 5)

	if n := q.Requeue(taken...); n != 1 {
		t.Errorf("expected 1 drop, got %d", n)
	}
	got := q.GetAndEmpty()
	want := []int{2, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestQueue_GetAndEmpty(t *testing.T) {
	q := New[int]()
	if got := q.GetAndEmpty(); len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
	q.Push(1, 2)
	if got := q.GetAndEmpty(); len(got) != 2 {
		t.Errorf("expected 2 items, got %d", len(got))
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
}

func TestQueue_Concurrent(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(base*100 + j)
			}
		}(i)
	}
	wg.Wait()

	if q.Len() != 1000 {
		t.Errorf("expected 1000 items, got %d", q.Len())
	}
}
