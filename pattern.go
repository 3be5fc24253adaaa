package cmtharvest

import (
	"regexp"
	"strings"
)

// Field groups extracted together by one pattern.
const (
	GroupTemporal   = "temporal"
	GroupCoordinate = "coordinate"
	GroupMagnitude  = "magnitude"
)

// FieldSpec maps one capture group of a pattern to a field.
type FieldSpec struct {
	Name    string
	Group   int  // submatch index
	Numeric bool // values must parse as decimal numbers
}

// Pattern is a line-level matcher and its field-extraction contract.
type Pattern struct {
	Group  string
	Regexp *regexp.Regexp
	Fields []FieldSpec
}

// Extraction is one field pulled out of a matched line. Err is set when a
// numeric field failed to parse; such fields must be treated as absent.
type Extraction struct {
	Name  string
	Raw   string
	Value Value
	Err   error
}

// Match applies the pattern to line. It returns false if the line does not match.
func (p *Pattern) Match(line string) ([]Extraction, bool) {
	m := p.Regexp.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}

	out := make([]Extraction, 0, len(p.Fields))
	for _, f := range p.Fields {
		raw := strings.TrimSpace(m[f.Group])
		ex := Extraction{Name: f.Name, Raw: raw}
		if f.Numeric {
			ex.Value, ex.Err = ParseNumber(raw)
		} else {
			ex.Value = TextValue(raw)
		}
		out = append(out, ex)
	}
	return out, true
}

// PatternSet is an ordered list of patterns. Earlier patterns take priority:
// a line is extracted by the first pattern that matches it.
type PatternSet []*Pattern

// Match returns the first pattern matching line along with its extractions.
func (ps PatternSet) Match(line string) (*Pattern, []Extraction, bool) {
	for _, p := range ps {
		if ex, ok := p.Match(line); ok {
			return p, ex, true
		}
	}
	return nil, nil, false
}

var (
	temporalRe = regexp.MustCompile(`Date:\s+(\d{4})/\s*(\d{1,2})/\s*(\d{1,2})\s+Centroid\s+Time:\s+(\d{1,2}):\s*(\d{1,2}):\s*(\d{1,2}(?:\.\d+)?)\s+GMT`)

	// Captures are deliberately loose so malformed numbers are reported
	// instead of making the whole line disappear.
	coordinateRe = regexp.MustCompile(`\bLat=\s*(\S+)\s+Lon=\s*(\S+)`)
	magnitudeRe  = regexp.MustCompile(`\bMw\s*=\s*(\S+)\s+mb\s*=\s*(\S+)\s+Ms\s*=\s*(\S+)\s+Scalar Moment\s*=\s*(.+)`)
)

// DefaultPatterns returns the patterns for the Global CMT text report format
// in priority order: temporal, coordinate, magnitude.
func DefaultPatterns() PatternSet {
	return PatternSet{
		{
			Group:  GroupTemporal,
			Regexp: temporalRe,
			Fields: []FieldSpec{
				{Name: FieldYear, Group: 1, Numeric: true},
				{Name: FieldMonth, Group: 2, Numeric: true},
				{Name: FieldDay, Group: 3, Numeric: true},
				{Name: FieldHour, Group: 4, Numeric: true},
				{Name: FieldMinute, Group: 5, Numeric: true},
				{Name: FieldSecond, Group: 6, Numeric: true},
			},
		},
		{
			Group:  GroupCoordinate,
			Regexp: coordinateRe,
			Fields: []FieldSpec{
				{Name: FieldLat, Group: 1, Numeric: true},
				{Name: FieldLon, Group: 2, Numeric: true},
			},
		},
		{
			Group:  GroupMagnitude,
			Regexp: magnitudeRe,
			Fields: []FieldSpec{
				{Name: FieldMw, Group: 1, Numeric: true},
				{Name: FieldMb, Group: 2, Numeric: true},
				{Name: FieldMs, Group: 3, Numeric: true},
				{Name: FieldScalarMoment, Group: 4},
			},
		},
	}
}
