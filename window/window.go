package window

import (
	"fmt"

	"github.com/danthegoodman1/hitmerge/record"
	"github.com/danthegoodman1/hitmerge/source"
	"github.com/danthegoodman1/hitmerge/utils"
)

var ErrNoSources = utils.PermError("no sources to resolve a window over")

type (
	// Window is the timestamp interval common to every source. Both bounds are
	// exclusive: a record exactly at Lower or Upper is outside.
	Window struct {
		Lower int64
		Upper int64
	}
)

// Resolve intersects the per-source ranges: the latest start and the earliest
// end over all sources.
func Resolve(sources []source.Source) (Window, error) {
	if len(sources) == 0 {
		return Window{}, ErrNoSources
	}
	w := Window{
		Lower: sources[0].LocalStart,
		Upper: sources[0].LocalEnd,
	}
	for _, s := range sources[1:] {
		w.Lower = max(w.Lower, s.LocalStart)
		w.Upper = min(w.Upper, s.LocalEnd)
	}
	return w, nil
}

// Contains reports Lower < ts < Upper.
func (w Window) Contains(ts int64) bool {
	return w.Lower < ts && ts < w.Upper
}

// Empty is true when no integer timestamp can fall inside the window. An empty
// window is not an error, it just filters everything out.
func (w Window) Empty() bool {
	return w.Lower >= w.Upper || w.Upper-w.Lower == 1
}

func (w Window) String() string {
	return fmt.Sprintf("(%d, %d)", w.Lower, w.Upper)
}

// Filter returns the records of recs inside w, in their original order. The
// input slice is not modified.
func Filter(recs []record.Record, w Window) []record.Record {
	var kept []record.Record
	for _, rec := range recs {
		if w.Contains(rec.Timestamp) {
			kept = append(kept, rec)
		}
	}
	return kept
}

// FilterAll filters every source against w, one result per source in source
// order. Results may be empty.
func FilterAll(sources []source.Source, w Window) [][]record.Record {
	filtered := make([][]record.Record, len(sources))
	for i, s := range sources {
		filtered[i] = Filter(s.Records, w)
	}
	return filtered
}
