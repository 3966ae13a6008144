package utils

import (
	"math"
)

const (
	EarthRadiusKm = 6371.0
	EarthRadiusM  = 6371000.0
	DegToRad      = math.Pi / 180.0
	RadToDeg      = 180.0 / math.Pi
)

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type BoundingBox struct {
	NorthEast Coordinate `json:"northEast"`
	SouthWest Coordinate `json:"southWest"`
}

// CalculateDistance calculates the great-circle distance in meters between
// two coordinates using the Haversine formula.
func CalculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * DegToRad
	lon1Rad := lon1 * DegToRad
	lat2Rad := lat2 * DegToRad
	lon2Rad := lon2 * DegToRad

	dlat := lat2Rad - lat1Rad
	dlon := lon2Rad - lon1Rad

	a := math.Sin(dlat/2)*math.Sin(dlat/2) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusM * c
}

// DistanceFromBoundary returns the signed distance in meters from a point to
// the edge of a circular zone. Negative values mean the point is inside.
func DistanceFromBoundary(lat, lon, centerLat, centerLon, radius float64) float64 {
	return CalculateDistance(lat, lon, centerLat, centerLon) - radius
}

// IsWithinRadius checks if a coordinate lies within a circular boundary.
func IsWithinRadius(lat, lon, centerLat, centerLon, radius float64) bool {
	return DistanceFromBoundary(lat, lon, centerLat, centerLon, radius) <= 0
}

// CalculateBearing calculates the bearing in degrees between two coordinates.
func CalculateBearing(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * DegToRad
	lon1Rad := lon1 * DegToRad
	lat2Rad := lat2 * DegToRad
	lon2Rad := lon2 * DegToRad

	dlon := lon2Rad - lon1Rad

	y := math.Sin(dlon) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) - math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(dlon)

	bearing := math.Atan2(y, x) * RadToDeg
	return math.Mod(bearing+360, 360)
}

// CalculateBoundingBox calculates a bounding box around a center point with
// a given radius. Useful for pre-filtering candidate zones before the exact
// haversine test.
func CalculateBoundingBox(centerLat, centerLon, radiusM float64) BoundingBox {
	// 1 degree latitude ≈ 111km
	latDelta := radiusM / 111000.0
	lonDelta := radiusM / (111000.0 * math.Cos(centerLat*DegToRad))

	return BoundingBox{
		NorthEast: Coordinate{
			Latitude:  centerLat + latDelta,
			Longitude: centerLon + lonDelta,
		},
		SouthWest: Coordinate{
			Latitude:  centerLat - latDelta,
			Longitude: centerLon - lonDelta,
		},
	}
}

// IsValidCoordinate checks if latitude and longitude values are valid
func IsValidCoordinate(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// CirclesOverlap reports whether two circular zones intersect, i.e. the
// distance between their centers is smaller than the sum of their radii.
func CirclesOverlap(lat1, lon1, radius1, lat2, lon2, radius2 float64) bool {
	return CalculateDistance(lat1, lon1, lat2, lon2) < radius1+radius2
}
