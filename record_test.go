package cmtharvest_test

import (
	"testing"

	"github.com/fwojciec/cmtharvest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Set(t *testing.T) {
	t.Parallel()

	t.Run("last write wins and keeps position", func(t *testing.T) {
		t.Parallel()

		r := cmtharvest.NewRecord()
		r.Set("a", cmtharvest.TextValue("1"))
		r.Set("b", cmtharvest.TextValue("2"))
		r.Set("a", cmtharvest.TextValue("3"))

		assert.Equal(t, []string{"a", "b"}, r.Fields())
		v, ok := r.Get("a")
		require.True(t, ok)
		assert.Equal(t, "3", v.String())
	})

	t.Run("zero value record is usable", func(t *testing.T) {
		t.Parallel()

		var r cmtharvest.Record
		r.Set("x", cmtharvest.TextValue("y"))

		assert.Equal(t, 1, r.Len())
	})
}

func TestValue_String(t *testing.T) {
	t.Parallel()

	t.Run("renders source digits", func(t *testing.T) {
		t.Parallel()

		v, err := cmtharvest.ParseNumber("5.00")
		require.NoError(t, err)

		assert.Equal(t, "5.00", v.String())
		assert.InDelta(t, 5.0, v.Number, 1e-12)
	})

	t.Run("formats computed numbers without exponent", func(t *testing.T) {
		t.Parallel()

		a, b := 0.1, 0.2
		v := cmtharvest.NumberValue("", a+b)

		assert.Equal(t, "0.30000000000000004", v.String())
	})

	t.Run("rejects non-numeric text", func(t *testing.T) {
		t.Parallel()

		_, err := cmtharvest.ParseNumber("5.x")

		assert.Error(t, err)
	})

	t.Run("accepts plain decimal forms", func(t *testing.T) {
		t.Parallel()

		for _, s := range []string{"5", "-60.2", "+5.6", ".5", "5.", "1.2e+17", "1E-3"} {
			v, err := cmtharvest.ParseNumber(s)
			require.NoError(t, err, s)
			assert.Equal(t, s, v.String())
		}
	})

	t.Run("rejects forms outside plain decimal", func(t *testing.T) {
		t.Parallel()

		for _, s := range []string{"NaN", "nan", "Inf", "-Infinity", "0x1p3", "1_0", "1e400", "", "."} {
			_, err := cmtharvest.ParseNumber(s)
			assert.Error(t, err, s)
		}
	})
}

func TestDataset_Columns(t *testing.T) {
	t.Parallel()

	t.Run("orders union by first occurrence across records", func(t *testing.T) {
		t.Parallel()

		r1 := cmtharvest.NewRecord()
		r1.Set("Lat", cmtharvest.TextValue("1"))
		r1.Set("Lon", cmtharvest.TextValue("2"))
		r2 := cmtharvest.NewRecord()
		r2.Set("Mw", cmtharvest.TextValue("5"))
		r2.Set("Lat", cmtharvest.TextValue("3"))
		r3 := cmtharvest.NewRecord()
		r3.Set("year", cmtharvest.TextValue("2020"))
		r3.Set("Mw", cmtharvest.TextValue("6"))

		ds := &cmtharvest.Dataset{Records: []*cmtharvest.Record{r1, r2, r3}}

		assert.Equal(t, []string{"Lat", "Lon", "Mw", "year"}, ds.Columns())
	})

	t.Run("nil dataset has no columns", func(t *testing.T) {
		t.Parallel()

		var ds *cmtharvest.Dataset

		assert.Empty(t, ds.Columns())
		assert.Equal(t, 0, ds.Len())
	})
}
