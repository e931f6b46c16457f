package bitmap

import "testing"

func TestObserveAndGet(t *testing.T) {
	idx := New()
	idx.Observe(3, true)
	idx.Observe(130, true)
	if !idx.Get(3) || !idx.Get(130) {
		t.Fatal("expected both observed IDs to read true")
	}
	if idx.Get(4) {
		t.Fatal("unobserved ID should read false")
	}
}

func TestOverwriteVerdict(t *testing.T) {
	idx := New()
	idx.Observe(5, true)
	idx.Observe(5, false)
	if idx.Get(5) {
		t.Fatal("expected the later verdict to win")
	}
}

func TestCountAndEach(t *testing.T) {
	idx := New()
	for _, id := range []uint64{1, 64, 65, 200} {
		idx.Observe(id, true)
	}
	if idx.Count() != 4 {
		t.Fatalf("expected count 4, got %d", idx.Count())
	}
	var seen []uint64
	idx.Each(func(id uint64) { seen = append(seen, id) })
	if len(seen) != 4 {
		t.Fatalf("expected 4 IDs from Each, got %d", len(seen))
	}
}

func TestLenTracksHighestID(t *testing.T) {
	idx := New()
	idx.Observe(9, true)
	if idx.Len() != 10 {
		t.Fatalf("expected Len 10, got %d", idx.Len())
	}
}
