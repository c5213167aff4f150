package models

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrBadFormat is returned for lines that are not "name, item, count"
// with an integer count.
var ErrBadFormat = errors.New("bad line format")

// Entry is one user-submitted line, split on commas.
type Entry struct {
	Name  string
	Item  string
	Count uint64
}

// ParseEntry splits a message line into an Entry. The line must have
// exactly three comma-separated fields and the third must be a
// non-negative integer. The first two fields are trimmed and may be
// empty.
func ParseEntry(line string) (*Entry, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return nil, ErrBadFormat
	}

	count, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 64)
	if err != nil {
		return nil, ErrBadFormat
	}

	return &Entry{
		Name:  strings.TrimSpace(fields[0]),
		Item:  strings.TrimSpace(fields[1]),
		Count: count,
	}, nil
}

// Row renders the entry as worksheet cells: timestamp, name, item, count.
// The timestamp is normalized to UTC.
func (e *Entry) Row(at time.Time) []string {
	return []string{
		at.UTC().Format(time.RFC3339),
		e.Name,
		e.Item,
		strconv.FormatUint(e.Count, 10),
	}
}
