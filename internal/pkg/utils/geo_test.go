package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCoordinates(t *testing.T) {
	assert.True(t, ValidateCoordinates(45.18, 5.72))
	assert.True(t, ValidateCoordinates(-90, 180))
	assert.False(t, ValidateCoordinates(90.5, 0))
	assert.False(t, ValidateCoordinates(0, -180.1))
}

func TestClampMercatorLat(t *testing.T) {
	assert.Equal(t, 45.18, ClampMercatorLat(45.18))
	assert.Equal(t, MaxMercatorLat, ClampMercatorLat(89))
	assert.Equal(t, -MaxMercatorLat, ClampMercatorLat(-90))
}
