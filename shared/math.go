package shared

import "runtime"

// NextPowerOf2 is a fast computation of 2^x
// see: https://stackoverflow.com/questions/466204/rounding-up-to-next-power-of-2
func NextPowerOf2(i uint64) uint64 {
	i--
	i |= i >> 1
	i |= i >> 2
	i |= i >> 4
	i |= i >> 8
	i |= i >> 16
	i |= i >> 32
	i++
	return i
}

// GridSize returns the number of workers needed to cover n items in
// chunks of the given stride, capped by the number of usable CPUs.
// It is zero for an empty range, so callers can skip spawning.
func GridSize(n, stride int) int {
	if n <= 0 {
		return 0
	}
	if stride < 1 {
		stride = 1
	}
	chunks := (n + stride - 1) / stride
	return min(chunks, runtime.GOMAXPROCS(0))
}
