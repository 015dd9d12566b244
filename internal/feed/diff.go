package feed

import (
	"sort"
	"time"
)

// Cursor tracks the newest feed timestamp previous runs have processed.
type Cursor interface {
	IsNewer(t time.Time) bool
	Advance(t time.Time)
}

// SelectNew returns the entries stamped after the cursor position,
// newest first, and advances the cursor to the newest of them. Entries
// with equal timestamps keep their feed order. An entry without a
// timestamp aborts the whole batch and leaves the cursor untouched.
func SelectNew(entries []Entry, cur Cursor) ([]Entry, error) {
	type stamped struct {
		entry Entry
		t     time.Time
	}

	resolved := make([]stamped, 0, len(entries))
	for _, e := range entries {
		t, err := e.Time()
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, stamped{entry: e, t: t})
	}

	var fresh []stamped
	for _, s := range resolved {
		if cur.IsNewer(s.t) {
			fresh = append(fresh, s)
		}
	}
	if len(fresh) == 0 {
		return nil, nil
	}

	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].t.After(fresh[j].t)
	})
	cur.Advance(fresh[0].t)

	out := make([]Entry, len(fresh))
	for i, s := range fresh {
		out[i] = s.entry
	}
	return out, nil
}
