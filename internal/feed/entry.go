// Package feed downloads release feeds and selects the entries that
// appeared since the previous run.
package feed

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedEntry reports a feed entry that carries no usable
// timestamp in any of the recognized fields.
var ErrMalformedEntry = errors.New("feed entry has no timestamp")

// Entry is one release announcement from a feed.
type Entry struct {
	Title     string
	Published *time.Time
	Updated   *time.Time
	PubDate   *time.Time
}

// Time resolves the entry's timestamp. Published wins over Updated,
// which wins over the legacy PubDate element. An entry with none of the
// three is malformed.
func (e Entry) Time() (time.Time, error) {
	switch {
	case e.Published != nil:
		return *e.Published, nil
	case e.Updated != nil:
		return *e.Updated, nil
	case e.PubDate != nil:
		return *e.PubDate, nil
	}
	return time.Time{}, fmt.Errorf("%q: %w", e.Title, ErrMalformedEntry)
}
