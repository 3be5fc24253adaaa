package mock

import (
	"context"
	"io"

	"github.com/fwojciec/cmtharvest"
)

var _ cmtharvest.Harvester = (*Harvester)(nil)

// Harvester is a mock implementation of cmtharvest.Harvester.
type Harvester struct {
	HarvestFn func(ctx context.Context, years cmtharvest.YearRange, progress cmtharvest.PageProgressFunc) (*cmtharvest.Corpus, error)
}

func (h *Harvester) Harvest(ctx context.Context, years cmtharvest.YearRange, progress cmtharvest.PageProgressFunc) (*cmtharvest.Corpus, error) {
	return h.HarvestFn(ctx, years, progress)
}

var _ cmtharvest.TableSerializer = (*TableSerializer)(nil)

// TableSerializer is a mock implementation of cmtharvest.TableSerializer.
type TableSerializer struct {
	SerializeFn func(ds *cmtharvest.Dataset, w io.Writer) (*cmtharvest.TableStats, error)
}

func (s *TableSerializer) Serialize(ds *cmtharvest.Dataset, w io.Writer) (*cmtharvest.TableStats, error) {
	return s.SerializeFn(ds, w)
}
