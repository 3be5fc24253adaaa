package cmtharvest

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Field names produced by the parser. They double as table column names.
const (
	FieldYear         = "year"
	FieldMonth        = "month"
	FieldDay          = "day"
	FieldHour         = "hour"
	FieldMinute       = "minute"
	FieldSecond       = "second"
	FieldLat          = "Lat"
	FieldLon          = "Lon"
	FieldMw           = "Mw"
	FieldMb           = "mb"
	FieldMs           = "Ms"
	FieldScalarMoment = "Scalar Moment"
)

// Value is a single field value: either a number or free text.
type Value struct {
	// Raw is the text the value was extracted from.
	Raw string

	// Number holds the parsed value when Numeric is true.
	Number  float64
	Numeric bool
}

// NumberValue returns a numeric Value that renders as raw.
func NumberValue(raw string, n float64) Value {
	return Value{Raw: raw, Number: n, Numeric: true}
}

// TextValue returns a text Value.
func TextValue(s string) Value {
	return Value{Raw: s}
}

// decimalRe is the plain decimal form: optional sign, digits with an optional
// fraction, optional exponent. strconv.ParseFloat is wider than this; it also
// takes NaN, Inf, hex floats and underscores.
var decimalRe = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumber parses s as a decimal number. The source digits are kept so the
// value renders exactly as it appeared.
func ParseNumber(s string) (Value, error) {
	if !decimalRe.MatchString(s) {
		return Value{}, fmt.Errorf("not a decimal number: %q", s)
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Value{}, fmt.Errorf("number out of range: %q", s)
	}
	return NumberValue(s, n), nil
}

// String renders the value for tabular output.
func (v Value) String() string {
	if v.Numeric && v.Raw == "" {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Raw
}

// Record is one reconstructed event: an ordered mapping from field name to value.
// Setting an existing field replaces its value and keeps its position.
type Record struct {
	names  []string
	values map[string]Value
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

// Set assigns a field value. The last write for a name wins.
func (r *Record) Set(name string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = v
}

// Get returns the value for a field.
func (r *Record) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Fields returns the field names in first-set order.
func (r *Record) Fields() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of populated fields.
func (r *Record) Len() int {
	return len(r.names)
}

// Empty reports whether no field has been set.
func (r *Record) Empty() bool {
	return r == nil || len(r.names) == 0
}

// Clone returns an independent copy of the record.
func (r *Record) Clone() *Record {
	c := NewRecord()
	for _, name := range r.names {
		c.Set(name, r.values[name])
	}
	return c
}

// WarningKind classifies a non-fatal parse diagnostic.
type WarningKind string

// Parse warning kinds.
const (
	WarnUnmatchedLine   WarningKind = "unmatched_line"
	WarnMalformedNumber WarningKind = "malformed_number"
)

// Warning is a non-fatal diagnostic collected while parsing.
type Warning struct {
	Kind  WarningKind
	Line  int // 1-based position in the corpus line sequence
	Field string
	Text  string
}

func (w Warning) String() string {
	if w.Field != "" {
		return fmt.Sprintf("line %d: %s %s: %q", w.Line, w.Kind, w.Field, w.Text)
	}
	return fmt.Sprintf("line %d: %s: %q", w.Line, w.Kind, w.Text)
}

// Dataset is the ordered collection of parsed records.
type Dataset struct {
	Records  []*Record
	Warnings []Warning
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Columns returns the union of field names across all records, ordered by
// first occurrence.
func (d *Dataset) Columns() []string {
	if d == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var columns []string
	for _, rec := range d.Records {
		for _, name := range rec.names {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			columns = append(columns, name)
		}
	}
	return columns
}

// CountWarnings returns the number of warnings of the given kind.
func (d *Dataset) CountWarnings(kind WarningKind) int {
	if d == nil {
		return 0
	}
	n := 0
	for _, w := range d.Warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}
