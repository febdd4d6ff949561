package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
	}{
		{name: "simple", in: []float32{3, 4}},
		{name: "negative components", in: []float32{-1, 2, -3}},
		{name: "already normalized", in: []float32{1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := normalizeVector(tt.in)
			assert.Len(t, out, len(tt.in))

			var magnitude float64
			for _, v := range out {
				magnitude += float64(v) * float64(v)
			}
			assert.InDelta(t, 1.0, math.Sqrt(magnitude), 1e-5)
		})
	}
}

func TestNormalizeVectorZero(t *testing.T) {
	in := []float32{0, 0, 0}
	out := normalizeVector(in)
	assert.Equal(t, in, out)
}
