package merger

import (
	"cmp"
	"slices"

	"github.com/danthegoodman1/hitmerge/record"
)

// Merge concatenates the filtered sequences in order, keeping the relative
// order of records within each. No deduplication or matching is done.
func Merge(filtered [][]record.Record) []record.Record {
	total := 0
	for _, recs := range filtered {
		total += len(recs)
	}
	merged := make([]record.Record, 0, total)
	for _, recs := range filtered {
		merged = append(merged, recs...)
	}
	return merged
}

// Sort orders merged by ascending timestamp. Records with equal timestamps keep
// their merged order, which is an unspecified tie-break preserved only for
// reproducibility given a fixed enumeration order. merged is not modified.
func Sort(merged []record.Record) []record.Record {
	// sorting positions on (timestamp, position) is a total order, so an
	// unstable O(n log n) sort gives the stable result
	idx := make([]int, len(merged))
	for i := range idx {
		idx[i] = i
	}
	slices.SortFunc(idx, func(a, b int) int {
		if c := cmp.Compare(merged[a].Timestamp, merged[b].Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	ordered := make([]record.Record, len(merged))
	for i, j := range idx {
		ordered[i] = merged[j]
	}
	return ordered
}

// IsOrdered reports whether recs is non-decreasing in timestamp.
func IsOrdered(recs []record.Record) bool {
	for i := 1; i < len(recs); i++ {
		if recs[i-1].Timestamp > recs[i].Timestamp {
			return false
		}
	}
	return true
}
