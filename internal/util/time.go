package util

import (
	"fmt"
	"strconv"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02/01/2006",
	"Jan-2006",
	"2006-01",
}

// ParseTimeFlexible parses the date formats that show up in transaction
// snapshots: RFC3339 variants, plain dates, month keys, and epoch
// milliseconds.
func ParseTimeFlexible(timeStr string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, timeStr); err == nil {
			return t.UTC(), nil
		}
	}

	// Epoch milliseconds as a fallback.
	if ms, err := strconv.ParseInt(timeStr, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("invalid time format: %s", timeStr)
}

// MonthKey buckets a raw date value as "YYYY-MM". The second return is false
// when the value cannot be parsed as a date.
func MonthKey(v interface{}) (string, bool) {
	s := ToString(v)
	if s == "" {
		return "", false
	}
	t, err := ParseTimeFlexible(s)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01"), true
}
