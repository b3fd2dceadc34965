package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytesForMB(t *testing.T) {
	tests := []struct {
		name string
		mb   float64
		want int64
	}{
		{name: "whole megabytes", mb: 5, want: 5 * BytesPerMB},
		{name: "half megabyte", mb: 0.5, want: 524288},
		{name: "fractional byte truncates", mb: 0.0000014, want: 1},
		{name: "zero", mb: 0, want: 0},
		{name: "large", mb: 16384, want: 16384 * BytesPerMB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BytesForMB(tt.mb))
		})
	}
}

func TestPartCount(t *testing.T) {
	tests := []struct {
		name   string
		source int64
		part   int64
		want   int
	}{
		{name: "exact multiple", source: 10 * BytesPerMB, part: 5 * BytesPerMB, want: 2},
		{name: "remainder adds part", source: 10*BytesPerMB + 1, part: 5 * BytesPerMB, want: 3},
		{name: "source smaller than part", source: 100, part: BytesPerMB, want: 1},
		{name: "source equals part", source: BytesPerMB, part: BytesPerMB, want: 1},
		{name: "empty source still one part", source: 0, part: BytesPerMB, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PartCount(tt.source, tt.part))
		})
	}
}

func TestToleranceWindow(t *testing.T) {
	w := Tolerance(1000)

	assert.True(t, w.Contains(900), "lower bound is inclusive")
	assert.True(t, w.Contains(1100), "upper bound is inclusive")
	assert.True(t, w.Contains(1000))
	assert.False(t, w.Contains(899))
	assert.False(t, w.Contains(1101))
}

func TestRatio(t *testing.T) {
	assert.InDelta(t, 0.5, Ratio(500, 1000), 1e-9)
	assert.InDelta(t, 2.0, Ratio(1000, 500), 1e-9)
	assert.InDelta(t, 1.0, Ratio(1000, 1000), 1e-9)
}

func TestMBRoundTrip(t *testing.T) {
	assert.InDelta(t, 2.5, MB(BytesForMB(2.5)), 1e-6)
}
