package store

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDotProduct_OrthogonalVectorsAreZero(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.Equal(t, float32(0), DotProduct(a, b))
}

func TestDotProduct_IdenticalUnitVectorsAreOne(t *testing.T) {
	v := Normalize([]float32{3, 4})
	assert.InDelta(t, 1.0, float64(DotProduct(v, v)), 1e-6)
}

func TestNormalize_ProducesUnitLength(t *testing.T) {
	v := Normalize([]float32{3, 4})
	var sumSq float64
	for _, f := range v {
		sumSq += float64(f) * float64(f)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSq), 1e-6)
}

func TestNormalize_ZeroVectorUnchanged(t *testing.T) {
	v := Normalize([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, v)
}
