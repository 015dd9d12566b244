package cache

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// The epoch every cursor starts from when no state file exists yet.
const (
	epochYear  = 2016
	epochMonth = 5
	epochDay   = 1
)

// Cursor marks how far into a feed previous runs have read, stored as
// the calendar fields of the newest entry processed so far. Positions
// compare through an approximate minute ordinal that treats every month
// as 30 days and every year as 365. The ordinal is not calendar
// accurate, but it is monotonic for real feed timestamps and keeps the
// state file format trivial.
type Cursor struct {
	path string

	year   int
	month  int
	day    int
	hour   int
	minute int
}

// NewCursor loads the cursor file at path. A missing file yields a
// cursor at the epoch. A file that does not hold five integers is a
// parse error.
func NewCursor(path string) (*Cursor, error) {
	c := &Cursor{path: path, year: epochYear, month: epochMonth, day: epochDay}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open cursor: %w", err)
	}

	fields := strings.Fields(string(data))
	if len(fields) != 5 {
		return nil, fmt.Errorf("parse cursor: 5 fields expected, got %d", len(fields))
	}
	nums := make([]int, len(fields))
	for i, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("parse cursor: %w", err)
		}
		nums[i] = n
	}
	c.year, c.month, c.day, c.hour, c.minute = nums[0], nums[1], nums[2], nums[3], nums[4]
	return c, nil
}

// IsNewer reports whether t falls strictly after the cursor position.
// A timestamp equal to the position has already been processed.
func (c *Cursor) IsNewer(t time.Time) bool {
	u := t.UTC()
	return ordinal(u.Year(), int(u.Month()), u.Day(), u.Hour(), u.Minute()) > c.ordinal()
}

// Advance moves the cursor to t when t is newer than the current
// position. Older or equal timestamps leave the cursor unchanged.
func (c *Cursor) Advance(t time.Time) {
	if !c.IsNewer(t) {
		return
	}
	u := t.UTC()
	c.year, c.month, c.day = u.Year(), int(u.Month()), u.Day()
	c.hour, c.minute = u.Hour(), u.Minute()
}

// Save rewrites the cursor file.
func (c *Cursor) Save() error {
	if err := os.WriteFile(c.path, []byte(c.String()+"\n"), 0o644); err != nil {
		return fmt.Errorf("write cursor: %w", err)
	}
	return nil
}

// String returns the cursor position in its file format,
// "year month day hour minute".
func (c *Cursor) String() string {
	return fmt.Sprintf("%d %d %d %d %d", c.year, c.month, c.day, c.hour, c.minute)
}

func (c *Cursor) ordinal() int64 {
	return ordinal(c.year, c.month, c.day, c.hour, c.minute)
}

func ordinal(year, month, day, hour, minute int) int64 {
	const (
		minutesPerDay   = 24 * 60
		minutesPerMonth = 30 * minutesPerDay
		minutesPerYear  = 365 * minutesPerDay
	)
	return int64(year)*minutesPerYear +
		int64(month)*minutesPerMonth +
		int64(day)*minutesPerDay +
		int64(hour)*60 +
		int64(minute)
}
