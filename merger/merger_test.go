package merger

import (
	"math/rand"
	"testing"

	"github.com/danthegoodman1/hitmerge/record"
)

func TestMergeKeepsOrder(t *testing.T) {
	merged := Merge([][]record.Record{
		{{Value: 1, Timestamp: 30}, {Value: 2, Timestamp: 10}},
		nil,
		{{Value: 3, Timestamp: 20}},
	})
	if len(merged) != 3 {
		t.Fatalf("expected 3 records, got %d", len(merged))
	}
	for i, want := range []int64{1, 2, 3} {
		if merged[i].Value != want {
			t.Fatalf("position %d: got value %d, want %d", i, merged[i].Value, want)
		}
	}
}

func TestMergeEmpty(t *testing.T) {
	merged := Merge([][]record.Record{nil, {}})
	if len(merged) != 0 {
		t.Fatal("expected empty merge")
	}
	if len(Sort(merged)) != 0 {
		t.Fatal("expected empty sort")
	}
}

func TestSortRandomized(t *testing.T) {
	r := rand.New(rand.NewSource(1234))
	for iter := 0; iter < 50; iter++ {
		var filtered [][]record.Record
		var id uint64
		numSources := 1 + r.Intn(5)
		for s := 0; s < numSources; s++ {
			recs := make([]record.Record, r.Intn(300))
			for i := range recs {
				// small range so equal timestamps are common
				recs[i] = record.Record{Identifier: id, Value: int64(s), Timestamp: r.Int63n(40)}
				id++
			}
			filtered = append(filtered, recs)
		}
		merged := Merge(filtered)
		ordered := Sort(merged)

		if !IsOrdered(ordered) {
			t.Fatalf("iteration %d: output not ordered", iter)
		}

		// permutation: identifiers are unique, every one appears exactly once
		if len(ordered) != len(merged) {
			t.Fatalf("iteration %d: length changed from %d to %d", iter, len(merged), len(ordered))
		}
		seen := make(map[uint64]int, len(ordered))
		for _, rec := range ordered {
			seen[rec.Identifier]++
		}
		for _, rec := range merged {
			if seen[rec.Identifier] != 1 {
				t.Fatalf("iteration %d: identifier %d appears %d times", iter, rec.Identifier, seen[rec.Identifier])
			}
		}

		// identifiers were assigned in merged order, so equal timestamps must
		// keep increasing identifiers
		for i := 1; i < len(ordered); i++ {
			if ordered[i-1].Timestamp == ordered[i].Timestamp && ordered[i-1].Identifier > ordered[i].Identifier {
				t.Fatalf("iteration %d: sort is not stable at %d", iter, i)
			}
		}
	}
}

func TestSortDoesNotModifyInput(t *testing.T) {
	merged := []record.Record{{Timestamp: 3}, {Timestamp: 1}, {Timestamp: 2}}
	ordered := Sort(merged)
	if merged[0].Timestamp != 3 || merged[1].Timestamp != 1 {
		t.Fatal("input was modified")
	}
	if ordered[0].Timestamp != 1 || ordered[2].Timestamp != 3 {
		t.Fatalf("unexpected order: %+v", ordered)
	}
}
