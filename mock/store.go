package mock

import (
	"context"
	"io"

	"github.com/fwojciec/cmtharvest"
)

var _ cmtharvest.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore is a mock implementation of cmtharvest.ArtifactStore.
type ArtifactStore struct {
	SaveCorpusFn func(ctx context.Context, corpus *cmtharvest.Corpus) error
	SaveTableFn  func(ctx context.Context, write func(w io.Writer) error) error
	CommitFn     func() error
	AbortFn      func() error
}

func (s *ArtifactStore) SaveCorpus(ctx context.Context, corpus *cmtharvest.Corpus) error {
	return s.SaveCorpusFn(ctx, corpus)
}

func (s *ArtifactStore) SaveTable(ctx context.Context, write func(w io.Writer) error) error {
	return s.SaveTableFn(ctx, write)
}

func (s *ArtifactStore) Commit() error {
	return s.CommitFn()
}

func (s *ArtifactStore) Abort() error {
	return s.AbortFn()
}
