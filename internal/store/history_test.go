package store

import (
	"sync"
	"testing"

	"github.com/couchcryptid/station-climatology/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func observation(station string, year, month, day int, tmax float64) domain.Observation {
	return domain.Observation{Station: station, Year: year, Month: month, Day: day, MaxTemp: domain.Float(tmax)}
}

func TestHistory_AddAndRead(t *testing.T) {
	h := NewHistory(0)

	added, err := h.Add(observation("S1", 2020, 1, 1, 5))
	require.NoError(t, err)
	assert.True(t, added)

	_, err = h.Add(observation("S1", 2021, 1, 1, 6))
	require.NoError(t, err)
	_, err = h.Add(observation("S2", 2021, 1, 1, 9))
	require.NoError(t, err)

	got := h.Observations("S1")
	require.Len(t, got, 2)
	assert.Equal(t, 2020, got[0].Year)
	assert.Equal(t, 2021, got[1].Year)

	assert.Len(t, h.Observations("S2"), 1)
	assert.Equal(t, 2, h.Len())
	assert.Nil(t, h.Observations("unknown"))
}

func TestHistory_SameDateReplacesInPlace(t *testing.T) {
	h := NewHistory(0)

	_, err := h.Add(observation("S1", 2020, 1, 1, 5))
	require.NoError(t, err)
	_, err = h.Add(observation("S1", 2020, 1, 2, 6))
	require.NoError(t, err)

	added, err := h.Add(observation("S1", 2020, 1, 1, 7))
	require.NoError(t, err)
	assert.False(t, added)

	got := h.Observations("S1")
	require.Len(t, got, 2)
	assert.Equal(t, 7.0, *got[0].MaxTemp)
	assert.Equal(t, 2, got[1].Day)
}

func TestHistory_ReturnsCopy(t *testing.T) {
	h := NewHistory(0)
	_, err := h.Add(observation("S1", 2020, 1, 1, 5))
	require.NoError(t, err)

	got := h.Observations("S1")
	got[0].Year = 1900

	assert.Equal(t, 2020, h.Observations("S1")[0].Year)
}

func TestHistory_StationLimit(t *testing.T) {
	h := NewHistory(1)

	_, err := h.Add(observation("S1", 2020, 1, 1, 5))
	require.NoError(t, err)

	_, err = h.Add(observation("S2", 2020, 1, 1, 5))
	require.ErrorIs(t, err, ErrStationLimit)

	_, err = h.Add(observation("S1", 2020, 1, 2, 5))
	require.NoError(t, err, "existing stations keep accepting records")
}

func TestHistory_ConcurrentAccess(t *testing.T) {
	h := NewHistory(0)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for day := 1; day <= 28; day++ {
				_, _ = h.Add(observation("S1", 2000+i, 2, day, float64(day)))
				_ = h.Observations("S1")
			}
		}()
	}
	wg.Wait()

	assert.Len(t, h.Observations("S1"), 8*28)
}
