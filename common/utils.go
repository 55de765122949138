package common

// Coalesce returns the first of values that is not the zero value of T, or the zero value when
// every value is zero. Config defaults use it for optional string fields.
//
// Parameters:
//   - values: candidates in order of preference
//
// Returns:
//   - T: the first non-zero candidate
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// CeilDiv returns n / d rounded up, the number of groups of size d needed to cover n items.
// A zero d is treated as 1.
//
// Parameters:
//   - n: the item count
//   - d: the group size
//
// Returns:
//   - uint32: the group count
func CeilDiv(n, d uint32) uint32 {
	d = max(d, 1)
	return (n + d - 1) / d
}
