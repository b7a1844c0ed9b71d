package time

import "time"

const Day = 24 * time.Hour

// StartOfDay returns midnight UTC of the day t falls into.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FloorToCadence truncates t to a cadence boundary measured from the start of
// its UTC day. Sub-second parts are dropped. A cadence below one second
// returns t truncated to the second.
func FloorToCadence(t time.Time, cadence time.Duration) time.Time {
	day := StartOfDay(t)
	sec := int64(t.UTC().Sub(day) / time.Second)
	step := int64(cadence / time.Second)
	if step <= 0 {
		return day.Add(time.Duration(sec) * time.Second)
	}
	return day.Add(time.Duration(sec-sec%step) * time.Second)
}

// DividesDay reports whether a day is a whole multiple of cadence, which makes
// day-anchored and epoch-anchored bins coincide.
func DividesDay(cadence time.Duration) bool {
	return cadence >= time.Second && cadence%time.Second == 0 && Day%cadence == 0
}

// NumTicks returns the number of ticks from, from+cadence, ... <= to.
func NumTicks(from, to time.Time, cadence time.Duration) int64 {
	if cadence <= 0 || to.Before(from) {
		return 0
	}
	return int64(to.Sub(from)/cadence) + 1
}

// Ticks enumerates from, from+cadence, ... <= to in UTC.
func Ticks(from, to time.Time, cadence time.Duration) []time.Time {
	n := NumTicks(from, to, cadence)
	ticks := make([]time.Time, 0, n)
	for i := int64(0); i < n; i++ {
		ticks = append(ticks, from.Add(time.Duration(i)*cadence).UTC())
	}
	return ticks
}
