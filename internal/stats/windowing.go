package stats

import (
	"fmt"
	"time"
)

// Bucket is the width of a period used by the period aggregations.
type Bucket string

const (
	BucketDay   Bucket = "day"
	BucketWeek  Bucket = "week"
	BucketMonth Bucket = "month"
)

// ParseBucket maps "day", "week" or "month" to a Bucket; anything else is day.
func ParseBucket(s string) Bucket {
	switch Bucket(s) {
	case BucketWeek, BucketMonth:
		return Bucket(s)
	default:
		return BucketDay
	}
}

// SnapToStart normalizes a timestamp to the beginning of its bucket (0:00:00)
// in the timestamp's own location.
func SnapToStart(t time.Time, bucket Bucket) time.Time {
	if t.IsZero() {
		return t
	}
	switch bucket {
	case BucketMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case BucketWeek:
		// Snap to Monday
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday -> 7
		}
		return time.Date(t.Year(), t.Month(), t.Day()-(weekday-1), 0, 0, 0, 0, t.Location())
	default: // day
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

// GenerateLabel returns a human-readable label for a bucket (e.g., "Jan 2024" or "2024-W01").
func GenerateLabel(t time.Time, bucket Bucket) string {
	switch bucket {
	case BucketMonth:
		return t.Format("Jan 2006")
	case BucketWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default: // day
		return t.Format("2006-01-02")
	}
}
