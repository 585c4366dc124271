package sequence

import (
	"sync"
	"testing"
)

func TestNextIsMonotonic(t *testing.T) {
	s := New(0)
	for want := uint64(1); want <= 100; want++ {
		if got := s.Next(); got != want {
			t.Fatalf("Next() = %d, want %d", got, want)
		}
	}
	if s.Current() != 100 {
		t.Fatalf("Current() = %d, want 100", s.Current())
	}
}

func TestRecoveryStart(t *testing.T) {
	s := New(42)
	if got := s.Next(); got != 43 {
		t.Fatalf("Next() after recovery = %d, want 43", got)
	}
	s.Reset(7)
	if got := s.Next(); got != 8 {
		t.Fatalf("Next() after reset = %d, want 8", got)
	}
}

func TestConcurrentNextIsUnique(t *testing.T) {
	s := New(0)

	const goroutines = 8
	const perG = 1000

	var wg sync.WaitGroup
	results := make([][]uint64, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				results[i] = append(results[i], s.Next())
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]bool, goroutines*perG)
	for _, seqs := range results {
		for _, v := range seqs {
			if seen[v] {
				t.Fatalf("sequence %d issued twice", v)
			}
			seen[v] = true
		}
	}
	if s.Current() != goroutines*perG {
		t.Fatalf("Current() = %d, want %d", s.Current(), goroutines*perG)
	}
}
