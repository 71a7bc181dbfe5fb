package utils

import "math"

// MaxMercatorLat - предел широты web-mercator тайлов
const MaxMercatorLat = 85.05112878

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ClampMercatorLat прижимает широту к диапазону, который видит карта
func ClampMercatorLat(lat float64) float64 {
	return math.Max(math.Min(lat, MaxMercatorLat), -MaxMercatorLat)
}
