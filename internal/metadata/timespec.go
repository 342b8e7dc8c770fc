package metadata

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// TimeOfDay is a UTC wall-clock offset from midnight. The configuration
// tables store it in a TIME column; the driver may hand it back as a
// time.Time, a string or raw bytes depending on the wire format, so it
// carries its own Scanner.
type TimeOfDay time.Duration

// NewTimeOfDay builds a TimeOfDay from hours, minutes and seconds.
func NewTimeOfDay(h, m, s int) TimeOfDay {
	return TimeOfDay(time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second)
}

// ParseTimeOfDay parses "HH:MM:SS" (seconds may carry a fraction).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		t, err = time.Parse("15:04:05.999999", s)
	}
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return timeOfDayFromClock(t), nil
}

func timeOfDayFromClock(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return NewTimeOfDay(h, m, s) + TimeOfDay(t.Nanosecond())
}

// Scan implements sql.Scanner.
func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*t = timeOfDayFromClock(v)
		return nil
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case int64:
		// Binary TIME values arrive as microseconds since midnight.
		*t = TimeOfDay(time.Duration(v) * time.Microsecond)
		return nil
	default:
		return fmt.Errorf("scan TimeOfDay: unsupported type %T", src)
	}
}

// Value implements driver.Valuer, rendering the canonical HH:MM:SS form.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// String renders the zero-padded HH:MM:SS form.
func (t TimeOfDay) String() string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d:%02d",
		int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}

// MarshalJSON renders the HH:MM:SS form as a JSON string.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// CompositeTime is the (year, day-of-year, time-of-day) ordering key used
// by every configuration table.
type CompositeTime struct {
	Year int
	DOY  int
	UTC  TimeOfDay
}

// TimeSpec is a reference point in time for configuration resolution.
// Exactly one representation must be supplied: a structured date via
// AtDate, or a continuous epoch via AtEpoch. The zero TimeSpec carries
// neither and fails validation.
type TimeSpec struct {
	date  *CompositeTime
	epoch *float64
}

// AtDate builds a TimeSpec from a structured (year, doy, utc) date.
func AtDate(year, doy int, utc TimeOfDay) TimeSpec {
	return TimeSpec{date: &CompositeTime{Year: year, DOY: doy, UTC: utc}}
}

// AtEpoch builds a TimeSpec from seconds since the Unix epoch.
func AtEpoch(epoch float64) TimeSpec {
	return TimeSpec{epoch: &epoch}
}

// Composite validates the spec and returns the composite ordering key,
// converting an epoch reference to UTC calendar components.
func (ts TimeSpec) Composite() (CompositeTime, error) {
	switch {
	case ts.date != nil:
		return *ts.date, nil
	case ts.epoch != nil:
		sec := int64(*ts.epoch)
		t := time.Unix(sec, 0).UTC()
		return CompositeTime{Year: t.Year(), DOY: t.YearDay(), UTC: timeOfDayFromClock(t)}, nil
	default:
		return CompositeTime{}, ErrInvalidTimeSpec
	}
}

// DayBounds returns the UTC [start, end) instants of a (year, doy) day.
func DayBounds(year, doy int) (time.Time, time.Time) {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, doy-1)
	return start, start.Add(24 * time.Hour)
}

// EpochBounds returns the half-open [start, end) epoch window covering a
// (year, doy) day. The exclusive end keeps fractional epochs within the
// day's last second without claiming the next midnight.
func EpochBounds(year, doy int) (float64, float64) {
	start, end := DayBounds(year, doy)
	return float64(start.Unix()), float64(end.Unix())
}
