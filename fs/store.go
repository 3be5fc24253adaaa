// Package fs provides file-based storage for run artifacts.
package fs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fwojciec/cmtharvest"
)

// Ensure FileStore implements cmtharvest.ArtifactStore at compile time.
var _ cmtharvest.ArtifactStore = (*FileStore)(nil)

// tempSuffix marks artifacts that have been saved but not committed.
const tempSuffix = ".tmp"

// FileStore implements cmtharvest.ArtifactStore with atomic update semantics.
// Artifacts are saved next to their destination with a .tmp suffix and
// renamed into place on Commit. An empty path disables that artifact.
// SaveCorpus and SaveTable may run concurrently.
type FileStore struct {
	corpusPath string
	tablePath  string

	mu    sync.Mutex
	saved []string
}

// NewFileStore creates a new FileStore writing the corpus to corpusPath and
// the table to tablePath.
func NewFileStore(corpusPath, tablePath string) *FileStore {
	return &FileStore{
		corpusPath: corpusPath,
		tablePath:  tablePath,
	}
}

// SaveCorpus writes the corpus text form to the temporary corpus path.
func (s *FileStore) SaveCorpus(ctx context.Context, corpus *cmtharvest.Corpus) error {
	return s.save(s.corpusPath, func(w io.Writer) error {
		_, err := corpus.WriteTo(w)
		return err
	})
}

// SaveTable calls write with the temporary table file.
func (s *FileStore) SaveTable(ctx context.Context, write func(w io.Writer) error) error {
	return s.save(s.tablePath, write)
}

func (s *FileStore) save(path string, write func(w io.Writer) error) error {
	if path == "" {
		return nil
	}

	tmp := path + tempSuffix
	if err := os.MkdirAll(filepath.Dir(tmp), 0755); err != nil {
		return cmtharvest.Wrap(cmtharvest.EIO, err, "creating directory for %s", path)
	}

	f, err := os.Create(tmp)
	if err != nil {
		return cmtharvest.Wrap(cmtharvest.EIO, err, "creating %s", tmp)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return cmtharvest.Wrap(cmtharvest.EIO, err, "closing %s", tmp)
	}

	s.mu.Lock()
	s.saved = append(s.saved, path)
	s.mu.Unlock()
	return nil
}

// Commit renames every saved artifact into place, the table before the
// corpus. Two renames cannot be atomic together; this order means a failed
// commit never leaves a new corpus beside an old table. Artifacts not yet
// renamed stay saved, so a following Abort removes them.
func (s *FileStore) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, path := range []string{s.tablePath, s.corpusPath} {
		i := slices.Index(s.saved, path)
		if path == "" || i < 0 {
			continue
		}
		if err := os.Rename(path+tempSuffix, path); err != nil {
			return cmtharvest.Wrap(cmtharvest.EIO, err, "committing %s", path)
		}
		s.saved = slices.Delete(s.saved, i, i+1)
	}
	s.saved = nil
	return nil
}

// Abort removes every uncommitted artifact.
func (s *FileStore) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, path := range s.saved {
		if err := os.Remove(path + tempSuffix); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	s.saved = nil
	return errors.Join(errs...)
}

// ReadCorpusFile loads a corpus previously written by SaveCorpus.
func ReadCorpusFile(path string) (*cmtharvest.Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cmtharvest.Errorf(cmtharvest.ENOTFOUND, "corpus file %s not found", path)
		}
		return nil, cmtharvest.Wrap(cmtharvest.EIO, err, "opening %s", path)
	}
	defer f.Close()

	return cmtharvest.ReadCorpus(f)
}
