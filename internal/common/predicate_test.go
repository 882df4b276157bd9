package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsInRange(t *testing.T) {
	assert.True(t, IsInRange(1, 1, 3))
	assert.True(t, IsInRange(1, 3, 3))
	assert.False(t, IsInRange(1, 4, 3))
	assert.False(t, IsInRange(0.0, math.NaN(), 1.0))
}

func TestIsUnitInterval(t *testing.T) {
	assert.True(t, IsUnitInterval(0.0))
	assert.True(t, IsUnitInterval(1.0))
	assert.False(t, IsUnitInterval(1.0000001))
	assert.False(t, IsUnitInterval(-0.1))
	assert.False(t, IsUnitInterval(math.NaN()))
}
