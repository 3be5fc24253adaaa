package harvest_test

import (
	"testing"

	"github.com/fwojciec/cmtharvest/harvest"
	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	t.Run("formats bytes as B", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "512 B", harvest.FormatBytes(512))
	})

	t.Run("formats kilobytes as KB", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "1.5 KB", harvest.FormatBytes(1536))
	})

	t.Run("formats megabytes as MB", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "2.0 MB", harvest.FormatBytes(2*1024*1024))
	})
}

func TestFormatYears(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1976-2020", harvest.FormatYears(1976, 2020))
	assert.Equal(t, "2004", harvest.FormatYears(2004, 2004))
}

func TestComputeHash(t *testing.T) {
	t.Parallel()

	t.Run("returns consistent hash for same content", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, harvest.ComputeHash("test content"), harvest.ComputeHash("test content"))
	})

	t.Run("returns different hashes for different content", func(t *testing.T) {
		t.Parallel()
		assert.NotEqual(t, harvest.ComputeHash("content a"), harvest.ComputeHash("content b"))
	})

	t.Run("returns hex string", func(t *testing.T) {
		t.Parallel()
		assert.Regexp(t, `^[0-9a-f]+$`, harvest.ComputeHash("test"))
	})
}
