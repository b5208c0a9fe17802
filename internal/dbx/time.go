package dbx

import "time"

// ToMillis converts t to unix milliseconds, the timestamp format of the
// SQLite schema.
func ToMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

// FromMillis is the inverse of ToMillis. The result is in UTC.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
