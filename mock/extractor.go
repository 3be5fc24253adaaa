package mock

import "github.com/fwojciec/cmtharvest"

var _ cmtharvest.BlockExtractor = (*BlockExtractor)(nil)

// BlockExtractor is a mock implementation of cmtharvest.BlockExtractor.
type BlockExtractor struct {
	ExtractFn func(html string) (*cmtharvest.PageBlocks, error)
}

func (e *BlockExtractor) Extract(html string) (*cmtharvest.PageBlocks, error) {
	return e.ExtractFn(html)
}
