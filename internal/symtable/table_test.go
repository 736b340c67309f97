package symtable

import (
	"strconv"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewTable(t *testing.T) {
	tbl := New[string]()
	s := tbl.Stats()

	if s.Bindings != 0 {
		t.Errorf("Expected 0 bindings, got %d", s.Bindings)
	}
	if s.Buckets != 509 {
		t.Errorf("Expected 509 buckets, got %d", s.Buckets)
	}
	if s.CapacityIndex != 0 {
		t.Errorf("Expected capacity index 0, got %d", s.CapacityIndex)
	}
	if s.UsedBuckets != 0 {
		t.Errorf("Expected no chains allocated, got %d", s.UsedBuckets)
	}
}

func TestGrowthAtFirstThreshold(t *testing.T) {
	tbl := New[int]()

	for i := 0; i < 508; i++ {
		tbl.Put("key"+strconv.Itoa(i), i)
	}
	if s := tbl.Stats(); s.Buckets != 509 {
		t.Fatalf("Expected 509 buckets before threshold, got %d", s.Buckets)
	}

	tbl.Put("key508", 508)
	s := tbl.Stats()
	if s.Buckets != 1021 {
		t.Errorf("Expected 1021 buckets after threshold, got %d", s.Buckets)
	}
	if s.CapacityIndex != 1 {
		t.Errorf("Expected capacity index 1, got %d", s.CapacityIndex)
	}
	if s.Rehashes != 1 {
		t.Errorf("Expected 1 rehash, got %d", s.Rehashes)
	}
	if s.Bindings != 509 {
		t.Errorf("Expected 509 bindings, got %d", s.Bindings)
	}
}

func TestDuplicatePutDoesNotTriggerGrowth(t *testing.T) {
	tbl := New[int]()
	for i := 0; i < 508; i++ {
		tbl.Put("key"+strconv.Itoa(i), i)
	}

	if tbl.Put("key0", 0) {
		t.Fatal("Expected duplicate put to fail")
	}
	if s := tbl.Stats(); s.Buckets != 509 {
		t.Errorf("Expected 509 buckets, got %d", s.Buckets)
	}
}

func TestGrowthPreservesBindingsThroughEveryCapacity(t *testing.T) {
	tbl := New[int]()
	caps := Capacities()
	last := caps[len(caps)-1]
	total := last + 5000

	for i := 0; i < total; i++ {
		if !tbl.Put("sym_"+strconv.Itoa(i), i) {
			t.Fatalf("Expected put of sym_%d to succeed", i)
		}

		for idx, c := range caps[:len(caps)-1] {
			if i+1 == c {
				s := tbl.Stats()
				if s.Buckets != caps[idx+1] {
					t.Fatalf("Expected %d buckets after %d bindings, got %d", caps[idx+1], i+1, s.Buckets)
				}
				for j := 0; j <= i; j++ {
					v, ok := tbl.Get("sym_" + strconv.Itoa(j))
					if !ok || v != j {
						t.Fatalf("Expected sym_%d=%d after rehash to %d, got %d (ok=%v)", j, j, s.Buckets, v, ok)
					}
				}
			}
		}
	}

	s := tbl.Stats()
	if s.Buckets != last {
		t.Errorf("Expected terminal bucket count %d, got %d", last, s.Buckets)
	}
	if s.CapacityIndex != len(caps)-1 {
		t.Errorf("Expected terminal capacity index %d, got %d", len(caps)-1, s.CapacityIndex)
	}
	if s.Rehashes != len(caps)-1 {
		t.Errorf("Expected %d rehashes, got %d", len(caps)-1, s.Rehashes)
	}
	if tbl.Len() != total {
		t.Errorf("Expected length %d, got %d", total, tbl.Len())
	}

	chained := 0
	tbl.Map(func(string, int, any) { chained++ }, nil)
	if chained != total {
		t.Errorf("Expected %d bindings visited, got %d", total, chained)
	}
}

func TestGrowHookAndLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	type growth struct{ from, to int }
	var grown []growth

	tbl := New[int](
		WithLogger(zap.New(core)),
		WithGrowHook(func(from, to int) {
			grown = append(grown, growth{from, to})
		}),
	)

	for i := 0; i < 1021; i++ {
		tbl.Put(strconv.Itoa(i), i)
	}

	expected := []growth{{509, 1021}, {1021, 2039}}
	if len(grown) != len(expected) {
		t.Fatalf("Expected %d grow events, got %d", len(expected), len(grown))
	}
	for i := range expected {
		if grown[i] != expected[i] {
			t.Errorf("Expected grow %v, got %v", expected[i], grown[i])
		}
	}

	entries := logs.FilterMessage("symbol table rehashed").All()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 rehash log entries, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["from_buckets"] != int64(509) || fields["to_buckets"] != int64(1021) {
		t.Errorf("Unexpected rehash fields: %v", fields)
	}
}

func TestWithHasher(t *testing.T) {
	calls := 0
	tbl := New[int](WithHasher(HasherFunc(func(key string, buckets int) int {
		calls++
		return 0
	})))

	tbl.Put("a", 1)
	tbl.Put("b", 2)
	tbl.Put("c", 3)

	s := tbl.Stats()
	if s.UsedBuckets != 1 {
		t.Errorf("Expected all bindings in one bucket, got %d buckets", s.UsedBuckets)
	}
	if s.LongestChain != 3 {
		t.Errorf("Expected chain length 3, got %d", s.LongestChain)
	}
	if calls != 3 {
		t.Errorf("Expected one hash per put, got %d", calls)
	}

	if v, ok := tbl.Get("b"); !ok || v != 2 {
		t.Errorf("Expected b=2, got %d (ok=%v)", v, ok)
	}
}

func TestXXHasherTable(t *testing.T) {
	tbl := New[int](WithHasher(XXHasher))
	for i := 0; i < 2000; i++ {
		tbl.Put(strconv.Itoa(i), i)
	}
	for i := 0; i < 2000; i++ {
		if v, ok := tbl.Get(strconv.Itoa(i)); !ok || v != i {
			t.Fatalf("Expected %d, got %d (ok=%v)", i, v, ok)
		}
	}
	if s := tbl.Stats(); s.Buckets != 2039 {
		t.Errorf("Expected 2039 buckets, got %d", s.Buckets)
	}
}

func TestFreeResetsCapacity(t *testing.T) {
	tbl := New[int]()
	for i := 0; i < 600; i++ {
		tbl.Put(strconv.Itoa(i), i)
	}
	tbl.Free()

	s := tbl.Stats()
	if s.Buckets != 509 || s.CapacityIndex != 0 || s.Bindings != 0 {
		t.Errorf("Expected a fresh table after free, got %+v", s)
	}
}

func TestRemoveKeepsSizeConsistent(t *testing.T) {
	tbl := New[int]()
	for i := 0; i < 1000; i++ {
		tbl.Put(strconv.Itoa(i), i)
	}
	for i := 0; i < 1000; i += 2 {
		if _, ok := tbl.Remove(strconv.Itoa(i)); !ok {
			t.Fatalf("Expected %d to be removed", i)
		}
	}

	sum := 0
	for _, c := range tbl.buckets {
		if c != nil {
			sum += c.count()
		}
	}
	if sum != tbl.Len() || tbl.Len() != 500 {
		t.Errorf("Expected size 500 matching chain lengths, got size %d and chains %d", tbl.Len(), sum)
	}
}

func TestMapNilVisitPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for nil visit function")
		}
	}()
	New[int]().Map(nil, nil)
}
