package cmtharvest_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/cmtharvest"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := cmtharvest.Errorf(cmtharvest.ENORESULTS, "no results for %d-%d", 2020, 2021)

	assert.Equal(t, cmtharvest.ENORESULTS, cmtharvest.ErrorCode(err))
	assert.Equal(t, "no results for 2020-2021", cmtharvest.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, cmtharvest.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, cmtharvest.ErrorMessage(nil))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, cmtharvest.EINTERNAL, cmtharvest.ErrorCode(err))
	assert.Equal(t, "Internal error.", cmtharvest.ErrorMessage(err))
}

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("keeps cause reachable", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("connection reset")
		err := cmtharvest.Wrap(cmtharvest.ENAVIGATION, cause, "page %d", 3)

		assert.ErrorIs(t, err, cause)
		assert.Equal(t, cmtharvest.ENAVIGATION, cmtharvest.ErrorCode(err))
		assert.Equal(t, "page 3", cmtharvest.ErrorMessage(err))
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("code survives fmt wrapping", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("harvest: %w", cmtharvest.Errorf(cmtharvest.EIO, "disk full"))

		assert.Equal(t, cmtharvest.EIO, cmtharvest.ErrorCode(err))
		assert.Equal(t, "disk full", cmtharvest.ErrorMessage(err))
	})
}

func TestErrAffordanceAbsent(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("follow: %w", cmtharvest.ErrAffordanceAbsent)

	assert.ErrorIs(t, err, cmtharvest.ErrAffordanceAbsent)
	assert.Equal(t, cmtharvest.ENOTFOUND, cmtharvest.ErrorCode(err))
}
