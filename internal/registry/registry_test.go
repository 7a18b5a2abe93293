package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/funvibe/derivcheck/internal/derivative"
)

func TestRegisterRejectsDuplicateKey(t *testing.T) {
	table := New()
	key := derivative.NewKey("sin", derivative.NewSubset(0), derivative.Pullback)

	if _, ok := table.Register(key, "vjpSin"); !ok {
		t.Fatalf("first registration failed")
	}
	existing, ok := table.Register(key, "vjpDuplicate")
	if ok {
		t.Fatalf("second registration for %s succeeded", key)
	}
	if existing != "vjpSin" {
		t.Errorf("existing = %q, want vjpSin", existing)
	}

	// Same original and subset, other kind.
	if _, ok := table.Register(derivative.NewKey("sin", derivative.NewSubset(0), derivative.Differential), "jvpSin"); !ok {
		t.Errorf("differential should not collide with pullback")
	}

	e, ok := table.Lookup("sin", derivative.NewSubset(0), derivative.Pullback)
	if !ok || e.Derivative != "vjpSin" || e.ID == "" {
		t.Errorf("Lookup = %+v, %v", e, ok)
	}
	if _, ok := table.Lookup("sin", derivative.NewSubset(0), derivative.Transpose); ok {
		t.Errorf("Lookup found a transpose that was never registered")
	}
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}
}

func TestEntriesInInsertionOrder(t *testing.T) {
	table := New()
	for i := 0; i < 5; i++ {
		table.Register(derivative.NewKey(fmt.Sprintf("f%d", i), derivative.NewSubset(0), derivative.Pullback), fmt.Sprintf("d%d", i))
	}
	for i, e := range table.Entries() {
		if e.Derivative != fmt.Sprintf("d%d", i) || e.Seq != i {
			t.Errorf("entry %d = %+v", i, e)
		}
	}
}

func TestConcurrentRegisterHasOneWinner(t *testing.T) {
	table := New()
	key := derivative.NewKey("add", derivative.NewSubset(0, 1), derivative.Pullback)
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, ok := table.Register(key, fmt.Sprintf("vjp%d", i)); ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if winners != 1 || table.Len() != 1 {
		t.Errorf("winners = %d, entries = %d", winners, table.Len())
	}
}
