package service

import (
	"math"

	"masjid/internal/mosque/models"
)

const (
	earthRadiusKm = 6371.0
	kmPerDegree   = 111.0
)

// boundingBox returns the latitude/longitude window enclosing a circle of
// radiusKm around the point.
func boundingBox(lat, lng, radiusKm float64) models.BoundingBox {
	dlat := radiusKm / kmPerDegree
	dlng := radiusKm / (kmPerDegree * math.Max(math.Cos(radians(lat)), 0.0001))
	return models.BoundingBox{
		MinLat: lat - dlat,
		MaxLat: lat + dlat,
		MinLng: lng - dlng,
		MaxLng: lng + dlng,
	}
}

// haversineKm is the great-circle distance between two points.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dlat := radians(lat2 - lat1)
	dlng := radians(lng2 - lng1)
	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dlng/2)*math.Sin(dlng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
