package gridiron

import "math"

// Coordinate is a stadium location in decimal degrees
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance calculates the great circle distance in miles between two
// coordinates using the haversine formula
// see: https://en.wikipedia.org/wiki/Haversine_formula
func Distance(a, b Coordinate) float64 {
	r := Config.EarthRadiusKm
	latA := radians(a.Latitude)
	latB := radians(b.Latitude)
	lonA := radians(a.Longitude)
	lonB := radians(b.Longitude)

	s := math.Pow(math.Sin((latB-latA)/2), 2) +
		(1-math.Pow(math.Sin((latA-latB)/2), 2)-math.Pow(math.Sin((latA+latB)/2), 2))*
			math.Pow(math.Sin((lonB-lonA)/2), 2)
	km := 2 * r * math.Asin(math.Sqrt(s))

	return km / Config.KmPerMile
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}
