package reviews

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Sorted returns a copy of rs ordered newest first.
//
// Reviews are compared by post date. When either date is unparseable or the
// dates are equal, ids ending in "_<digits>" are compared by that number,
// larger first. Anything else keeps its existing relative order.
func Sorted(rs []Review) []Review {
	out := slices.Clone(rs)
	slices.SortStableFunc(out, compareReviews)
	return out
}

func compareReviews(a, b Review) int {
	da, okA := parseDate(a.DateOfPost)
	db, okB := parseDate(b.DateOfPost)
	if okA && okB {
		if c := db.Compare(da); c != 0 {
			return c
		}
	}

	ta, okA := idTimestamp(a.ID)
	tb, okB := idTimestamp(b.ID)
	if okA && okB {
		return cmp.Compare(tb, ta)
	}
	return 0
}

var dateLayouts = []string{DateLayout, time.RFC3339Nano}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// idTimestamp extracts the numeric suffix after the last underscore.
func idTimestamp(id string) (int64, bool) {
	i := strings.LastIndexByte(id, '_')
	if i < 0 || i == len(id)-1 {
		return 0, false
	}
	n, err := strconv.ParseInt(id[i+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NormalizeDate reduces an RFC3339 timestamp to a calendar date. Values that
// are already dates, or that do not parse, are returned unchanged.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().Format(DateLayout)
	}
	return s
}
