package cmtharvest

import "strings"

// State is the parser automaton state.
type State int

const (
	// StateAccumulating collects fields into the current record.
	StateAccumulating State = iota
	// StateFlushed is reported for the line that closed a record span.
	// The automaton is back in StateAccumulating on the next line.
	StateFlushed
)

func (s State) String() string {
	switch s {
	case StateAccumulating:
		return "accumulating"
	case StateFlushed:
		return "flushed"
	default:
		return "unknown"
	}
}

// Transition is the outcome of feeding one line to the automaton.
type Transition struct {
	State    State
	Next     *Record   // accumulator after the line
	Flushed  *Record   // completed record, nil if none
	Warnings []Warning // diagnostics for this line
}

// Step is the pure transition function of the parser. It never mutates acc.
// lineNo is only used to label warnings.
func (ps PatternSet) Step(acc *Record, line string, lineNo int) Transition {
	line = strings.TrimSpace(line)

	if line == Delimiter {
		t := Transition{State: StateFlushed, Next: NewRecord()}
		if !acc.Empty() {
			t.Flushed = acc
		}
		return t
	}

	t := Transition{State: StateAccumulating, Next: acc}
	if line == "" {
		return t
	}

	_, extractions, ok := ps.Match(line)
	if !ok {
		t.Warnings = append(t.Warnings, Warning{Kind: WarnUnmatchedLine, Line: lineNo, Text: line})
		return t
	}

	next := NewRecord()
	if acc != nil {
		next = acc.Clone()
	}
	for _, ex := range extractions {
		if ex.Err != nil {
			t.Warnings = append(t.Warnings, Warning{
				Kind:  WarnMalformedNumber,
				Line:  lineNo,
				Field: ex.Name,
				Text:  ex.Raw,
			})
			continue
		}
		next.Set(ex.Name, ex.Value)
	}
	t.Next = next
	return t
}

// Parser turns a line sequence into a Dataset. It is a thin stateful wrapper
// around PatternSet.Step; the zero value is not usable, use NewParser.
type Parser struct {
	patterns PatternSet
	acc      *Record
	line     int
	dataset  *Dataset
}

// NewParser returns a parser using the given patterns.
// A nil pattern set selects DefaultPatterns.
func NewParser(patterns PatternSet) *Parser {
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	return &Parser{
		patterns: patterns,
		acc:      NewRecord(),
		dataset:  &Dataset{},
	}
}

// Feed consumes one line.
func (p *Parser) Feed(line string) {
	p.line++
	t := p.patterns.Step(p.acc, line, p.line)
	if t.Flushed != nil {
		p.dataset.Records = append(p.dataset.Records, t.Flushed)
	}
	p.dataset.Warnings = append(p.dataset.Warnings, t.Warnings...)
	p.acc = t.Next
}

// Finish flushes any pending record as if a trailing delimiter had been seen
// and returns the dataset. The parser must not be used afterwards.
func (p *Parser) Finish() *Dataset {
	if !p.acc.Empty() {
		p.dataset.Records = append(p.dataset.Records, p.acc)
		p.acc = NewRecord()
	}
	return p.dataset
}

// ParseLines parses a line sequence with the default patterns.
func ParseLines(lines []string) *Dataset {
	p := NewParser(nil)
	for _, line := range lines {
		p.Feed(line)
	}
	return p.Finish()
}

// Parse parses a corpus with the default patterns.
func Parse(corpus *Corpus) *Dataset {
	return ParseLines(corpus.Lines())
}

// ParseText parses the corpus text form, as written by Corpus.WriteTo.
func ParseText(text string) *Dataset {
	return ParseLines(strings.Split(text, "\n"))
}
