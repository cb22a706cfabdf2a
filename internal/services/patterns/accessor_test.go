package patterns

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/models"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/service"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/repository"
	pkgcache "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/cache"
)

type failingStore struct {
	getErr, putErr error
	puts           int
}

func (s *failingStore) GetPattern(context.Context, uint64, models.Season) (models.SeasonalPattern, bool, error) {
	return models.SeasonalPattern{}, false, s.getErr
}

func (s *failingStore) PutPattern(context.Context, uint64, models.Season, models.SeasonalPattern) error {
	s.puts++
	return s.putErr
}

func newAccessor(t *testing.T) *Accessor {
	t.Helper()
	mc := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	return NewAccessor(repository.NewKVStateStore(mc))
}

func TestAccessor_FirstUpdateHasZeroVolatility(t *testing.T) {
	ctx := context.Background()
	a := newAccessor(t)

	_, found, err := a.Get(ctx, 1, models.SeasonWinter)
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := a.Update(ctx, 1, models.SeasonWinter, 120, 100)
	require.NoError(t, err)
	assert.True(t, ok)

	got, found, err := a.Get(ctx, 1, models.SeasonWinter)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.SeasonalPattern{DemandMultiplier: 120, HistoricalAverage: 100, VolatilityScore: 0}, got)
}

func TestAccessor_SubsequentUpdateDerivesVolatility(t *testing.T) {
	ctx := context.Background()
	a := newAccessor(t)

	_, err := a.Update(ctx, 1, models.SeasonWinter, 120, 100)
	require.NoError(t, err)
	_, err = a.Update(ctx, 1, models.SeasonWinter, 110, 150)
	require.NoError(t, err)

	got, _, err := a.Get(ctx, 1, models.SeasonWinter)
	require.NoError(t, err)
	assert.Equal(t, models.SeasonalPattern{DemandMultiplier: 110, HistoricalAverage: 150, VolatilityScore: 50}, got)

	// other seasons are independent keys
	_, found, err := a.Get(ctx, 1, models.SeasonSummer)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAccessor_InvalidParameters(t *testing.T) {
	ctx := context.Background()
	st := &failingStore{}
	a := NewAccessor(st)

	cases := []struct {
		season     models.Season
		multiplier int64
		average    int64
	}{
		{models.SeasonWinter, -1, 100},
		{models.SeasonWinter, 100, -1},
		{"monsoon", 100, 100},
		{"", 100, 100},
	}
	for _, tc := range cases {
		ok, err := a.Update(ctx, 1, tc.season, tc.multiplier, tc.average)
		assert.False(t, ok)
		assert.ErrorIs(t, err, service.ErrInvalidParameter)
	}
	assert.Zero(t, st.puts, "failed validation must not write")

	_, _, err := a.Get(ctx, 1, "monsoon")
	assert.ErrorIs(t, err, service.ErrInvalidParameter)
}

func TestAccessor_StoreErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	a := NewAccessor(&failingStore{getErr: boom})
	_, err := a.Update(ctx, 1, models.SeasonFall, 100, 100)
	assert.ErrorIs(t, err, boom)

	st := &failingStore{putErr: boom}
	a = NewAccessor(st)
	ok, err := a.Update(ctx, 1, models.SeasonFall, 100, 100)
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
}

func TestVolatilityScore(t *testing.T) {
	cases := []struct {
		prev, next, want int64
	}{
		{100, 100, 0},
		{100, 110, 10},
		{100, 90, 10},
		{100, 150, 50},
		{100, 199, 99},
		{100, 200, 100},
		{100, 0, 100},
		{0, 0, 0},
		{0, 1, 100},
		{3, 4, 33},
		{math.MaxInt64, math.MaxInt64 - 1, 0},
		{math.MaxInt64, math.MaxInt64 / 2, 50},
		{0, math.MaxInt64, 100},
	}
	for _, tc := range cases {
		got := VolatilityScore(tc.prev, tc.next)
		assert.Equal(t, tc.want, got, "prev=%d next=%d", tc.prev, tc.next)
		assert.GreaterOrEqual(t, got, int64(0))
		assert.LessOrEqual(t, got, int64(100))
	}
}

func TestAccessor_PutReturnsStoredRecord(t *testing.T) {
	ctx := context.Background()
	a := newAccessor(t)

	_, err := a.Put(ctx, 2, models.SeasonSpring, 90, 200)
	require.NoError(t, err)
	written, err := a.Put(ctx, 2, models.SeasonSpring, 95, 150)
	require.NoError(t, err)

	stored, found, err := a.Get(ctx, 2, models.SeasonSpring)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, stored, written)
	assert.Equal(t, int64(25), written.VolatilityScore)

	_, err = a.Put(ctx, 2, models.SeasonSpring, -1, 150)
	assert.ErrorIs(t, err, service.ErrInvalidParameter)
}
