package ergast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"racebot/ergast"
	"racebot/temperrors"
)

func TestQuery_SetAndValue(t *testing.T) {
	t.Parallel()

	var q ergast.Query
	require.NoError(t, q.Set(ergast.FieldSeason, "2024"))
	require.NoError(t, q.Set(ergast.FieldDriverID, "alonso"))
	require.NoError(t, q.Set(ergast.FieldLapNumber, "0"))

	season, ok := q.Value(ergast.FieldSeason)
	assert.True(t, ok)
	assert.Equal(t, "2024", season)

	driver, ok := q.Value(ergast.FieldDriverID)
	assert.True(t, ok)
	assert.Equal(t, "alonso", driver)

	assert.True(t, q.Has(ergast.FieldLapNumber))
	assert.False(t, q.Has(ergast.FieldRound))
	assert.False(t, q.Has(ergast.FieldCircuitID))
}

func TestQuery_SetRejectsNonInteger(t *testing.T) {
	t.Parallel()

	var q ergast.Query
	err := q.Set(ergast.FieldRound, "last")

	require.ErrorIs(t, err, temperrors.ErrInvalidQuery)
	assert.Nil(t, q.Round)

	var inputErr *temperrors.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "round", inputErr.Field)
}

func TestQuery_EveryFieldRoundTrips(t *testing.T) {
	t.Parallel()

	for _, f := range ergast.Fields {
		var q ergast.Query
		raw := "7"
		if f.IsText() {
			raw = "monza"
		}
		require.NoError(t, q.Set(f, raw), f)

		got, ok := q.Value(f)
		assert.True(t, ok, f)
		assert.Equal(t, raw, got, f)
	}
}
