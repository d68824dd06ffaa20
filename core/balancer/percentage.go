package balancer

import (
	"math"
	"math/bits"
)

// Percentage returns floor(numerator*precision/denominator). The product is
// computed on 128 bits so large unit counts do not wrap.
func Percentage(precision, numerator, denominator int64) (int64, error) {
	if precision <= 0 || denominator <= 0 {
		return 0, ErrNonPositiveScale
	}
	return mulDiv(numerator, precision, denominator)
}

// mulDiv returns floor(a*b/d) for d > 0.
func mulDiv(a, b, d int64) (int64, error) {
	neg := (a < 0) != (b < 0)
	hi, lo := bits.Mul64(abs64(a), abs64(b))
	if hi >= uint64(d) {
		return 0, ErrOverflow
	}
	q, r := bits.Div64(hi, lo, uint64(d))
	if !neg {
		if q > math.MaxInt64 {
			return 0, ErrOverflow
		}
		return int64(q), nil
	}
	// round toward negative infinity
	if r != 0 {
		q++
	}
	if q == 0 {
		return 0, nil
	}
	if q > 1<<63 {
		return 0, ErrOverflow
	}
	return -int64(q-1) - 1, nil
}

func mul(a, b int64) (int64, error) {
	return mulDiv(a, b, 1)
}

func add(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrOverflow
	}
	return a + b, nil
}

func abs64(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}
