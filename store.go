package cmtharvest

import (
	"context"
	"io"
)

// ArtifactStore persists the corpus and table of a run with atomic semantics.
// Save methods write to a temporary location; Commit makes all saved
// artifacts visible at once; Abort discards them.
type ArtifactStore interface {
	SaveCorpus(ctx context.Context, corpus *Corpus) error
	SaveTable(ctx context.Context, write func(w io.Writer) error) error
	Commit() error
	Abort() error
}
