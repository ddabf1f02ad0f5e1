package ledger

import "time"

// Clock supplies the current time. Injected so tests can pin the day and so
// every read and write path resolves "today" through the same function.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// DayOf truncates t to its UTC calendar day. This is the single day-key
// function: record lookup and record creation both go through it.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
