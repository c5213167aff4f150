package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestParseEntry(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    *Entry
		wantErr bool
	}{
		{
			name: "plain line",
			line: "Ivanov,pens,3",
			want: &Entry{Name: "Ivanov", Item: "pens", Count: 3},
		},
		{
			name: "fields are trimmed",
			line: "  Ivanov , pens ,  12 ",
			want: &Entry{Name: "Ivanov", Item: "pens", Count: 12},
		},
		{
			name: "empty leading fields are allowed",
			line: " , ,7",
			want: &Entry{Name: "", Item: "", Count: 7},
		},
		{
			name: "leading zeros normalize",
			line: "a,b,007",
			want: &Entry{Name: "a", Item: "b", Count: 7},
		},
		{
			name:    "two fields",
			line:    "a,3",
			wantErr: true,
		},
		{
			name:    "four fields",
			line:    "a,b,c,3",
			wantErr: true,
		},
		{
			name:    "count is not numeric",
			line:    "a,b,three",
			wantErr: true,
		},
		{
			name:    "negative count rejected",
			line:    "a,b,-3",
			wantErr: true,
		},
		{
			name:    "fractional count rejected",
			line:    "a,b,1.5",
			wantErr: true,
		},
		{
			name:    "empty count rejected",
			line:    "a,b,",
			wantErr: true,
		},
		{
			name:    "empty line",
			line:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEntry(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseEntry(%q) expected error, got %+v", tt.line, got)
				}
				if !errors.Is(err, ErrBadFormat) {
					t.Errorf("ParseEntry(%q) error = %v, want ErrBadFormat", tt.line, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEntry(%q) unexpected error: %v", tt.line, err)
			}
			if *got != *tt.want {
				t.Errorf("ParseEntry(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestEntryRow(t *testing.T) {
	at := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)
	e := &Entry{Name: "Ivanov", Item: "pens", Count: 3}

	row := e.Row(at)
	want := []string{"2026-02-14T09:30:00Z", "Ivanov", "pens", "3"}

	if len(row) != len(want) {
		t.Fatalf("Row() has %d cells, want %d", len(row), len(want))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("Row()[%d] = %q, want %q", i, row[i], want[i])
		}
	}
}

func TestEntryRowNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	at := time.Date(2026, 2, 14, 14, 30, 0, 0, loc)

	row := (&Entry{}).Row(at)
	if row[0] != "2026-02-14T09:30:00Z" {
		t.Errorf("Row()[0] = %q, want UTC-normalized timestamp", row[0])
	}
}

func TestPropertyParseEntryRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.StringMatching(`[^,]{0,20}`).Draw(rt, "name")
		item := rapid.StringMatching(`[^,]{0,20}`).Draw(rt, "item")
		count := rapid.Uint64Range(0, 1<<40).Draw(rt, "count")

		line := fmt.Sprintf("%s,%s,%d", name, item, count)
		entry, err := ParseEntry(line)
		if err != nil {
			rt.Fatalf("ParseEntry(%q) unexpected error: %v", line, err)
		}

		if entry.Name != strings.TrimSpace(name) {
			rt.Errorf("Name = %q, want %q", entry.Name, strings.TrimSpace(name))
		}
		if entry.Item != strings.TrimSpace(item) {
			rt.Errorf("Item = %q, want %q", entry.Item, strings.TrimSpace(item))
		}
		if entry.Count != count {
			rt.Errorf("Count = %d, want %d", entry.Count, count)
		}

		row := entry.Row(time.Now())
		if len(row) != 4 {
			rt.Fatalf("Row() has %d cells, want 4", len(row))
		}
		if row[3] != strconv.FormatUint(count, 10) {
			rt.Errorf("Row()[3] = %q, want %q", row[3], strconv.FormatUint(count, 10))
		}
	})
}

func TestPropertyParseEntryFieldCount(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(rt, "fields")
		if n == 3 {
			return
		}

		fields := make([]string, n)
		for i := range fields {
			fields[i] = "1"
		}
		line := strings.Join(fields, ",")

		if _, err := ParseEntry(line); err == nil {
			rt.Errorf("ParseEntry(%q) accepted %d fields", line, n)
		}
	})
}
