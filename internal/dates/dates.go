// Package dates is the single conversion point between stored ISO-8601 strings
// and the time values the engine works with. Every day-truncation rule used by
// tasks, calendar and feed aggregation lives here.
package dates

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

const (
	// ISOLayout matches the millisecond UTC form used by the record store.
	ISOLayout = "2006-01-02T15:04:05.000Z07:00"
	// DateLayout is the calendar-day form accepted from forms and URLs.
	DateLayout = "2006-01-02"
	// DisplayLayout renders a day for humans, e.g. "Jan 2, 2006".
	DisplayLayout = "Jan 2, 2006"
	// MonthLayout renders a calendar title, e.g. "January 2006".
	MonthLayout = "January 2006"

	day = 24 * time.Hour
)

var inputLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	DateLayout,
}

// Instant is a point in time that crosses the storage and JSON boundary as an
// ISO-8601 string. Malformed or missing values decode to the zero Instant.
type Instant struct {
	time.Time
}

// At wraps t.
func At(t time.Time) Instant {
	return Instant{Time: t}
}

// Ptr wraps t and returns a pointer, handy for optional fields.
func Ptr(t time.Time) *Instant {
	in := At(t)
	return &in
}

// Parse reads an ISO-8601 timestamp. Values without a zone are read as UTC.
func Parse(value string) (Instant, error) {
	return ParseIn(value, time.UTC)
}

// ParseIn reads an ISO-8601 timestamp, interpreting zone-less values in loc.
func ParseIn(value string, loc *time.Location) (Instant, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Instant{}, fmt.Errorf("empty date")
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return At(t), nil
		}
	}
	return Instant{}, fmt.Errorf("unrecognized date %q", value)
}

// String serializes the instant in the store's ISO form; zero is "".
func (i Instant) String() string {
	if i.IsZero() {
		return ""
	}
	return i.UTC().Format(ISOLayout)
}

// MarshalJSON implements json.Marshaler.
func (i Instant) MarshalJSON() ([]byte, error) {
	if i.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(i.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Instant) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		*i = Instant{}
		return nil
	}
	parsed, err := Parse(*raw)
	if err != nil {
		*i = Instant{}
		return nil
	}
	*i = parsed
	return nil
}

// MarshalBSONValue implements bson.ValueMarshaler.
func (i Instant) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if i.IsZero() {
		return bson.TypeNull, nil, nil
	}
	return bson.TypeString, bsoncore.AppendString(nil, i.String()), nil
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler. Native BSON datetimes
// are accepted as well so documents written by other tools still load.
func (i *Instant) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeString:
		s, ok := raw.StringValueOK()
		if !ok {
			*i = Instant{}
			return nil
		}
		parsed, err := Parse(s)
		if err != nil {
			*i = Instant{}
			return nil
		}
		*i = parsed
	case bson.TypeDateTime:
		*i = At(raw.Time().UTC())
	default:
		*i = Instant{}
	}
	return nil
}

// Truncate drops the time of day, keeping t's location.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayIn converts t into loc and truncates it to midnight.
func DayIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Truncate(t.In(loc))
}

// SameDay reports whether a falls on the same calendar day as b, evaluated in
// b's location. Time of day is irrelevant.
func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// AddDays shifts t by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// StartOfWeek returns the Sunday midnight on or before t.
func StartOfWeek(t time.Time) time.Time {
	today := Truncate(t)
	return AddDays(today, -int(today.Weekday()))
}

// StartOfMonth returns midnight on the first of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// DaysFloor returns floor((to - from) / 24h).
func DaysFloor(from, to time.Time) int {
	d := to.Sub(from)
	n := int(d / day)
	if d < 0 && d%day != 0 {
		n--
	}
	return n
}

// DaysCeil returns ceil((to - from) / 24h).
func DaysCeil(from, to time.Time) int {
	d := to.Sub(from)
	n := int(d / day)
	if d > 0 && d%day != 0 {
		n++
	}
	return n
}

// FormatDay renders t as "Jan 2, 2006". Zero renders as "".
func FormatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DisplayLayout)
}
