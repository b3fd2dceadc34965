// Package sizing holds the byte arithmetic shared by every component that
// interprets a "target size in megabytes". All conversions go through here so
// generation, splitting and adjustment agree on the same byte counts.
package sizing

// BytesPerMB is the number of bytes in one mebibyte.
const BytesPerMB = 1 << 20

// DefaultChunkBytes is the buffer bound used for streamed file writes.
// Nothing in the pipeline allocates more than this per write loop.
const DefaultChunkBytes = 10 * BytesPerMB

// BytesForMB converts a megabyte count to whole bytes, truncating any
// fractional byte. Every size target in the system is interpreted through
// this function.
func BytesForMB(mb float64) int64 {
	return int64(mb * BytesPerMB)
}

// MB converts a byte count back to megabytes for reporting.
func MB(bytes int64) float64 {
	return float64(bytes) / BytesPerMB
}

// PartCount returns how many parts of partBytes are needed to cover
// sourceBytes, never less than one. partBytes must be positive; callers
// validate targets before planning a split.
func PartCount(sourceBytes, partBytes int64) int {
	if sourceBytes <= 0 {
		return 1
	}
	n := sourceBytes / partBytes
	if sourceBytes%partBytes != 0 {
		n++
	}
	if n < 1 {
		n = 1
	}
	return int(n)
}

// Window is the band around a target size within which an actual size is
// accepted without corrective action.
type Window struct {
	Lower float64
	Upper float64
}

// Tolerance returns the ±10% acceptance window around target.
func Tolerance(target int64) Window {
	t := float64(target)
	return Window{Lower: 0.9 * t, Upper: 1.1 * t}
}

// Contains reports whether actual falls inside the window, bounds included.
func (w Window) Contains(actual int64) bool {
	a := float64(actual)
	return a >= w.Lower && a <= w.Upper
}

// Ratio is the scale factor that would bring actual to target.
func Ratio(target, actual int64) float64 {
	return float64(target) / float64(actual)
}
