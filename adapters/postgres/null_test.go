package postgres

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNullableFloat(t *testing.T) {
	nan := nullableFloat(math.NaN())
	assert.False(t, nan.Valid, "NaN must map to SQL NULL")

	v := nullableFloat(0.05)
	assert.True(t, v.Valid)
	assert.Equal(t, 0.05, v.Float64)

	zero := nullableFloat(0)
	assert.True(t, zero.Valid, "zero is a real value, not NULL")
}

func TestFloatOrNaN(t *testing.T) {
	assert.True(t, math.IsNaN(floatOrNaN(nil)), "NULL must map back to NaN")

	v := 0.42
	assert.Equal(t, 0.42, floatOrNaN(&v))
}
