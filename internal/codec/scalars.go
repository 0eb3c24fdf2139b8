// Package codec implements the bridge's bidirectional value codec: the
// request-value decoder that restores host-native values from incoming
// JSON, and the response-value encoder that turns host values into
// JSON-safe documents and typed envelopes.
// file: internal/codec/scalars.go
package codec

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Timestamp is a host timestamp scalar. A nil *Timestamp encodes as JSON
// null, matching the Python bridge's "missing timestamp" sentinel.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t as a Timestamp scalar.
func NewTimestamp(t time.Time) *Timestamp { return &Timestamp{Time: t} }

// ISO8601 renders the timestamp with sub-second precision when present.
func (t *Timestamp) ISO8601() string {
	if t == nil {
		return ""
	}
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02T15:04:05Z07:00")
	}
	return t.Format("2006-01-02T15:04:05.999999999Z07:00")
}

// Date is a host calendar-date scalar (no time-of-day component).
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date from a time.Time, discarding its time-of-day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ISO8601 renders the date as YYYY-MM-DD.
func (d Date) ISO8601() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

// Clock is a host time-of-day scalar (no calendar-date component).
type Clock struct {
	Hour, Minute, Second, Nanosecond int
}

// ISO8601 renders the time-of-day as HH:MM:SS, followed by up to nine
// fractional-second digits (trailing zeros dropped) when Nanosecond is set.
func (c Clock) ISO8601() string {
	t := time.Date(0, 1, 1, c.Hour, c.Minute, c.Second, c.Nanosecond, time.UTC)
	if c.Nanosecond == 0 {
		return t.Format("15:04:05")
	}
	return t.Format("15:04:05.999999999")
}

// Duration wraps time.Duration for encode purposes; it renders as total
// seconds, a float, which may be negative. This matches the Python
// bridge's timedelta representation exactly.
type Duration time.Duration

// Seconds returns the duration's total seconds as a float64.
func (d Duration) Seconds() float64 { return time.Duration(d).Seconds() }

// Decimal wraps shopspring/decimal.Decimal; it encodes as a lossless
// decimal string, never a JSON number (which would lose precision).
type Decimal struct {
	decimal.Decimal
}

// NewDecimal wraps d as a Decimal scalar.
func NewDecimal(d decimal.Decimal) Decimal { return Decimal{Decimal: d} }

// UUID wraps google/uuid.UUID; it encodes as its canonical string form.
type UUID struct {
	uuid.UUID
}

// NewUUID wraps u as a UUID scalar.
func NewUUID(u uuid.UUID) UUID { return UUID{UUID: u} }

// Path is a filesystem path scalar; it encodes as a plain string.
type Path string

// Bytes is a byte-string scalar. It encodes as the
// {"__type__":"bytes","encoding":"base64","data":...} envelope.
type Bytes []byte

// Set is a host set-like value with unspecified iteration order on encode,
// mirroring Python's built-in set/frozenset.
type Set[T comparable] map[T]struct{}

// NewSet builds a Set from the given elements.
func NewSet[T comparable](elems ...T) Set[T] {
	s := make(Set[T], len(elems))
	for _, e := range elems {
		s[e] = struct{}{}
	}
	return s
}

// Slice returns the set's elements as a slice, in unspecified order.
func (s Set[T]) Slice() []T {
	out := make([]T, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	return out
}

// Scalar wraps a boxed numeric host value (the Go analogue of a numpy or
// pandas scalar) so the NaN/Infinity guard can unwrap it before checking,
// the same way the Python codec unwraps numpy and pandas scalars ahead of
// its NaN/Infinity check.
type Scalar struct {
	Value any
}
