package stats

import (
	"sync"
	"testing"
)

func TestOpGuardMarkers(t *testing.T) {
	t.Parallel()

	g := newOpGuard()
	if got := g.current(); got != "none" {
		t.Fatalf("idle marker = %q, want %q", got, "none")
	}

	g.enter("TestOperation")
	if got := g.current(); got != "TestOperation" {
		t.Errorf("marker after enter = %q, want %q", got, "TestOperation")
	}

	g.mark("TestOperation:Stage")
	if got := g.current(); got != "TestOperation:Stage" {
		t.Errorf("marker after mark = %q, want %q", got, "TestOperation:Stage")
	}

	g.exit()
	if got := g.current(); got != "none" {
		t.Errorf("marker after exit = %q, want %q", got, "none")
	}
}

func TestOpGuardSerializes(t *testing.T) {
	t.Parallel()

	g := newOpGuard()
	counter := 0

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.enter("Increment")
			counter++
			g.exit()
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("counter = %d, want 50", counter)
	}
}
