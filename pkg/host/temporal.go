package host

import "time"

// Epoch is the kdb+ epoch, 2000.01.01D00:00:00.
var Epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

// DateOf returns the date holding t (UTC).
func DateOf(t time.Time) Date {
	d := t.UTC().Sub(Epoch)
	days := d / day
	if d < 0 && d%day != 0 {
		days--
	}
	return Date(days)
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return Epoch.AddDate(0, 0, int(d))
}

// TimestampOf returns the timestamp of t.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp(t.UTC().Sub(Epoch).Nanoseconds())
}

// Time returns the instant of ts in UTC.
func (ts Timestamp) Time() time.Time {
	return Epoch.Add(time.Duration(ts))
}

// Duration returns ts as a time.Duration.
func (ts Timespan) Duration() time.Duration {
	return time.Duration(ts)
}

// TimeOf returns the time of day of t (UTC) in milliseconds.
func TimeOf(t time.Time) Time {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Time(t.Sub(midnight).Milliseconds())
}

// Duration returns t as an offset from midnight.
func (t Time) Duration() time.Duration {
	return time.Duration(t) * time.Millisecond
}
