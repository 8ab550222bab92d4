package timebase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labnwb/internal/services"
)

func TestNewClockRejectsNonPositiveRate(t *testing.T) {
	_, err := NewClock(0, 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrValidation))

	_, err = NewClock(-30000, 100)
	require.Error(t, err)
}

func TestSecondsRebasesOntoOrigin(t *testing.T) {
	clock, err := NewClock(30000, 90000)
	require.NoError(t, err)

	assert.Equal(t, 0.0, clock.Seconds(90000))
	assert.Equal(t, 1.0, clock.Seconds(120000))
	assert.Equal(t, 0.5, clock.Seconds(105000))
}

func TestRebase(t *testing.T) {
	clock, err := NewClock(1000, 5000)
	require.NoError(t, err)

	out, err := clock.Rebase([]int64{5000, 5500, 7000})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 2}, out)
}

func TestRebaseRejectsSamplesBeforeOrigin(t *testing.T) {
	clock, err := NewClock(1000, 5000)
	require.NoError(t, err)

	_, err = clock.Rebase([]int64{5000, 4999})
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrValidation))
}

func TestCheckMonotonic(t *testing.T) {
	assert.NoError(t, CheckMonotonic(nil))
	assert.NoError(t, CheckMonotonic([]float64{1}))
	assert.NoError(t, CheckMonotonic([]float64{1, 1, 2}))

	err := CheckMonotonic([]float64{1, 2, 1.5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrValidation))
}

func TestAlignPair(t *testing.T) {
	n, mismatch := AlignPair("video", []float64{1, 2, 3}, "pose", []float64{1, 2, 3})
	assert.Equal(t, 3, n)
	assert.Nil(t, mismatch)

	n, mismatch = AlignPair("video", make([]float64, 1000), "pose", make([]float64, 998))
	assert.Equal(t, 998, n)
	require.NotNil(t, mismatch)
	assert.Contains(t, mismatch.String(), "truncating to 998")
}
