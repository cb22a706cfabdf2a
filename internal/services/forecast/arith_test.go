package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/service"
)

func TestCheckedArithmetic(t *testing.T) {
	v, err := addChecked(math.MaxInt64-1, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), v)

	_, err = addChecked(math.MaxInt64, 1)
	assert.ErrorIs(t, err, service.ErrArithmeticOverflow)
	_, err = addChecked(math.MinInt64, -1)
	assert.ErrorIs(t, err, service.ErrArithmeticOverflow)

	_, err = subChecked(math.MinInt64, 1)
	assert.ErrorIs(t, err, service.ErrArithmeticOverflow)
	_, err = subChecked(0, math.MinInt64)
	assert.ErrorIs(t, err, service.ErrArithmeticOverflow)
	v, err = subChecked(-5, -10)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), v)

	_, err = mulChecked(math.MaxInt64/2+1, 2)
	assert.ErrorIs(t, err, service.ErrArithmeticOverflow)
	_, err = mulChecked(math.MinInt64, -1)
	assert.ErrorIs(t, err, service.ErrArithmeticOverflow)
	_, err = mulChecked(-1, math.MinInt64)
	assert.ErrorIs(t, err, service.ErrArithmeticOverflow)
	v, err = mulChecked(-3, 7)
	assert.NoError(t, err)
	assert.Equal(t, int64(-21), v)
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, int64(107), floorDiv(1290, 12))
	assert.Equal(t, int64(-2), floorDiv(-3, 2))
	assert.Equal(t, int64(-1), floorDiv(-2, 2))
}
