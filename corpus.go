package cmtharvest

import (
	"bufio"
	"io"
	"strings"
)

// Delimiter separates consecutive raw blocks in the corpus text form.
var Delimiter = strings.Repeat("-", 50)

// RawBlock is the text of one result block as captured from a result page.
type RawBlock string

// Corpus is the ordered sequence of raw blocks harvested across all pages.
// Each block is implicitly followed by a Delimiter line.
type Corpus struct {
	Blocks []RawBlock
}

// Append adds blocks to the end of the corpus.
func (c *Corpus) Append(blocks ...RawBlock) {
	c.Blocks = append(c.Blocks, blocks...)
}

// Len returns the number of blocks in the corpus.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Blocks)
}

// String returns the corpus text form: every block followed by a newline,
// the delimiter and another newline.
func (c *Corpus) String() string {
	var b strings.Builder
	_, _ = c.WriteTo(&b)
	return b.String()
}

// Lines returns the line sequence consumed by the parser.
func (c *Corpus) Lines() []string {
	if c == nil {
		return nil
	}
	var lines []string
	for _, block := range c.Blocks {
		lines = append(lines, strings.Split(string(block), "\n")...)
		lines = append(lines, Delimiter)
	}
	return lines
}

// WriteTo writes the corpus text form to w.
func (c *Corpus) WriteTo(w io.Writer) (int64, error) {
	if c == nil {
		return 0, nil
	}
	var n int64
	for _, block := range c.Blocks {
		m, err := io.WriteString(w, string(block)+"\n"+Delimiter+"\n")
		n += int64(m)
		if err != nil {
			return n, Wrap(EIO, err, "writing corpus")
		}
	}
	return n, nil
}

// ReadCorpus reads a corpus previously written with WriteTo. Text after the
// last delimiter is kept as a final block.
func ReadCorpus(r io.Reader) (*Corpus, error) {
	corpus := &Corpus{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var block []string
	pending := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == Delimiter {
			corpus.Append(RawBlock(strings.Join(block, "\n")))
			block = block[:0]
			pending = false
			continue
		}
		block = append(block, line)
		pending = true
	}
	if err := scanner.Err(); err != nil {
		return corpus, Wrap(EIO, err, "reading corpus")
	}
	if pending {
		corpus.Append(RawBlock(strings.Join(block, "\n")))
	}
	return corpus, nil
}
