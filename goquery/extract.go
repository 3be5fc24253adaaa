// Package goquery extracts event blocks from catalog result pages using goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/cmtharvest"
)

// Ensure BlockExtractor implements cmtharvest.BlockExtractor at compile time.
var _ cmtharvest.BlockExtractor = (*BlockExtractor)(nil)

// DefaultMarker is the heading text that precedes the result blocks.
const DefaultMarker = "Results"

// BlockExtractor extracts the preformatted event blocks that follow the
// results heading on a catalog result page.
type BlockExtractor struct {
	marker     string
	headingSel string
	blockSel   string
}

// NewBlockExtractor creates a new BlockExtractor.
func NewBlockExtractor() *BlockExtractor {
	return &BlockExtractor{
		marker:     DefaultMarker,
		headingSel: "h2",
		blockSel:   "pre",
	}
}

// Extract parses HTML and returns the text of every block element that
// appears after the results heading, in document order. Blocks before the
// heading are ignored.
func (e *BlockExtractor) Extract(html string) (*cmtharvest.PageBlocks, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, cmtharvest.Errorf(cmtharvest.EINVALID, "failed to parse HTML: %v", err)
	}

	result := &cmtharvest.PageBlocks{}

	// A selector group matches in document order, so headings and blocks
	// come back interleaved exactly as they appear on the page.
	doc.Find(e.headingSel + ", " + e.blockSel).Each(func(_ int, sel *goquery.Selection) {
		if goquery.NodeName(sel) == e.headingSel {
			if !result.HasResults && strings.TrimSpace(sel.Text()) == e.marker {
				result.HasResults = true
			}
			return
		}
		if !result.HasResults {
			return
		}

		result.Blocks = append(result.Blocks, cmtharvest.RawBlock(sel.Text()))
	})

	return result, nil
}
