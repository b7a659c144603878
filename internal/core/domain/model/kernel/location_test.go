package kernel_test

import (
	"math"
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocation(t *testing.T) {
	t.Run("should create location within bounds", func(t *testing.T) {
		loc, err := kernel.NewLocation(6.9271, 79.8612)

		require.NoError(t, err)
		require.NoError(t, loc.Validate())
		assert.InDelta(t, 6.9271, loc.Lat(), 1e-12)
		assert.InDelta(t, 79.8612, loc.Lng(), 1e-12)
	})

	t.Run("should accept boundary values", func(t *testing.T) {
		for _, c := range [][2]float64{{-90, -180}, {90, 180}, {0, 0}} {
			_, err := kernel.NewLocation(c[0], c[1])
			require.NoError(t, err)
		}
	})

	t.Run("should reject out of range latitude", func(t *testing.T) {
		_, err := kernel.NewLocation(90.5, 10)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		assert.Contains(t, err.Error(), "lat")
	})

	t.Run("should reject NaN and infinite coordinates", func(t *testing.T) {
		for _, c := range [][2]float64{
			{math.NaN(), 10},
			{10, math.NaN()},
			{math.Inf(1), 10},
			{10, math.Inf(-1)},
		} {
			_, err := kernel.NewLocation(c[0], c[1])
			require.ErrorIs(t, err, errs.ErrValueIsOutOfRange, "%v,%v", c[0], c[1])
		}
	})

	t.Run("should report both coordinates", func(t *testing.T) {
		_, err := kernel.NewLocation(-91, 181)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "lat")
		assert.Contains(t, err.Error(), "lng")
	})
}

func TestLocation_Validate(t *testing.T) {
	var zero kernel.Location

	require.ErrorIs(t, zero.Validate(), kernel.ErrLocationIsNotConstructed)
}

func TestLocation_IsEqual(t *testing.T) {
	a, _ := kernel.NewLocation(1.5, 2.5)
	b, _ := kernel.NewLocation(1.5, 2.5)
	c, _ := kernel.NewLocation(1.5, 2.6)

	eq, err := a.IsEqual(b)
	require.NoError(t, err)
	assert.True(t, eq)

	eq, err = a.IsEqual(c)
	require.NoError(t, err)
	assert.False(t, eq)

	_, err = a.IsEqual(kernel.Location{})
	require.Error(t, err)
}

func TestLocation_DistanceTo(t *testing.T) {
	origin, _ := kernel.NewLocation(0, 0)
	north, _ := kernel.NewLocation(0.001, 0)

	t.Run("should compute haversine meters", func(t *testing.T) {
		d, err := origin.DistanceTo(north)

		require.NoError(t, err)
		assert.InDelta(t, 111.19, d, 0.01)
	})

	t.Run("should round to whole meters", func(t *testing.T) {
		d, err := origin.RoundedDistanceTo(north)

		require.NoError(t, err)
		assert.Equal(t, int64(111), d)
	})

	t.Run("should fail for zero value", func(t *testing.T) {
		_, err := origin.DistanceTo(kernel.Location{})
		require.ErrorIs(t, err, kernel.ErrLocationIsNotConstructed)
	})
}
