package main_test

import (
	"bytes"
	"testing"

	"github.com/fwojciec/cmtharvest"
	main "github.com/fwojciec/cmtharvest/cmd/cmtharvest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitLine(t *testing.T) {
	t.Parallel()

	t.Run("exact line", func(t *testing.T) {
		t.Parallel()

		fit, err := main.FitLine([]float64{1, 2, 3}, []float64{3, 5, 7})

		require.NoError(t, err)
		assert.Equal(t, 3, fit.N)
		assert.InDelta(t, 2.0, fit.Slope, 1e-9)
		assert.InDelta(t, 1.0, fit.Intercept, 1e-9)
		assert.InDelta(t, 1.0, fit.R2, 1e-9)
	})

	t.Run("noisy points", func(t *testing.T) {
		t.Parallel()

		fit, err := main.FitLine([]float64{0, 1, 2, 3}, []float64{0, 2, 1, 3})

		require.NoError(t, err)
		assert.InDelta(t, 0.8, fit.Slope, 1e-9)
		assert.InDelta(t, 0.3, fit.Intercept, 1e-9)
		assert.InDelta(t, 0.64, fit.R2, 1e-9)
	})

	t.Run("requires two points", func(t *testing.T) {
		t.Parallel()

		_, err := main.FitLine([]float64{1}, []float64{1})

		assert.Equal(t, cmtharvest.EINVALID, cmtharvest.ErrorCode(err))
	})

	t.Run("requires predictor variance", func(t *testing.T) {
		t.Parallel()

		_, err := main.FitLine([]float64{2, 2}, []float64{1, 3})

		assert.Equal(t, cmtharvest.EINVALID, cmtharvest.ErrorCode(err))
	})
}

func TestRegressCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("skips rows with missing values", func(t *testing.T) {
		t.Parallel()

		path := writeTable(t, "mb,Mw\n1,3\n2,5\n,9\n3,7\n")
		stdout := &bytes.Buffer{}

		err := (&main.RegressCmd{Table: path, X: "mb", Y: "Mw"}).Run(testDeps(stdout, &bytes.Buffer{}))

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Mw = 1.0000 + 2.0000 * mb")
		assert.Contains(t, stdout.String(), "n = 3")
	})

	t.Run("skips rows with non-decimal numbers", func(t *testing.T) {
		t.Parallel()

		path := writeTable(t, "mb,Mw\n1,3\n2,5\nNaN,9\n4,Inf\n3,7\n")
		stdout := &bytes.Buffer{}

		err := (&main.RegressCmd{Table: path, X: "mb", Y: "Mw"}).Run(testDeps(stdout, &bytes.Buffer{}))

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Mw = 1.0000 + 2.0000 * mb")
		assert.Contains(t, stdout.String(), "n = 3")
	})

	t.Run("unknown column", func(t *testing.T) {
		t.Parallel()

		path := writeTable(t, "mb\n1\n")
		stderr := &bytes.Buffer{}

		err := (&main.RegressCmd{Table: path, X: "mb", Y: "Mw"}).Run(testDeps(&bytes.Buffer{}, stderr))

		assert.Equal(t, cmtharvest.EINVALID, cmtharvest.ErrorCode(err))
		assert.Contains(t, stderr.String(), `column "Mw" not in table`)
	})
}
