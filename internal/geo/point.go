package geo

import "math"

// EarthRadiusKm is the sphere radius used for every distance in this package.
const EarthRadiusKm = 6372.8

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Valid reports whether p is a usable coordinate.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func toRad(d float64) float64 { return d * math.Pi / 180 }
func toDeg(r float64) float64 { return r * 180 / math.Pi }

// DistanceKm is the haversine great-circle distance between a and b.
func DistanceKm(a, b Point) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	sLat := math.Sin(dLat / 2)
	sLng := math.Sin(dLng / 2)
	h := sLat*sLat + sLng*sLng*math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))
	// rounding can push h just outside [0,1] near zero or antipodal distances
	h = math.Max(0, math.Min(1, h))
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// DistanceMeters is DistanceKm scaled to meters.
func DistanceMeters(a, b Point) float64 {
	return DistanceKm(a, b) * 1000
}

// Destination returns the point reached from p after travelling meters along
// the initial bearing (degrees clockwise from north).
func Destination(p Point, bearingDeg, meters float64) Point {
	delta := meters / 1000 / EarthRadiusKm
	theta := toRad(bearingDeg)
	phi1 := toRad(p.Lat)
	lambda1 := toRad(p.Lng)

	sinPhi2 := math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta)
	phi2 := math.Asin(math.Max(-1, math.Min(1, sinPhi2)))
	y := math.Sin(theta) * math.Sin(delta) * math.Cos(phi1)
	x := math.Cos(delta) - math.Sin(phi1)*sinPhi2
	lambda2 := lambda1 + math.Atan2(y, x)

	lng := math.Mod(toDeg(lambda2)+540, 360) - 180
	return Point{Lat: toDeg(phi2), Lng: lng}
}
