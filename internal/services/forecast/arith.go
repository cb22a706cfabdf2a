package forecast

import (
	"fmt"
	"math"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/service"
)

func addChecked(a, b int64) (int64, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, fmt.Errorf("%w: %d + %d", service.ErrArithmeticOverflow, a, b)
	}
	return s, nil
}

func subChecked(a, b int64) (int64, error) {
	d := a - b
	if (b > 0 && d > a) || (b < 0 && d < a) {
		return 0, fmt.Errorf("%w: %d - %d", service.ErrArithmeticOverflow, a, b)
	}
	return d, nil
}

func mulChecked(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, fmt.Errorf("%w: %d * %d", service.ErrArithmeticOverflow, a, b)
	}
	return p, nil
}

// floorDiv divides rounding toward negative infinity. b must be positive.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
