// Package coordconv converts between Cartesian offsets and geographic
// coordinates using a local equirectangular approximation, and computes
// great-circle distance between geographic points. No projection beyond
// this local approximation is attempted (spec §6).
package coordconv

import "math"

// EarthRadiusMeters is the Earth radius used by the local equirectangular
// approximation and the Haversine distance formula.
const EarthRadiusMeters = 6378137.0

// Origin anchors the local equirectangular approximation at a geographic
// point (lat0, lon0), both in degrees.
type Origin struct {
	LatDeg float64
	LonDeg float64
}

// GeoPoint is a (latitude, longitude) pair in degrees.
type GeoPoint struct {
	LatDeg float64
	LonDeg float64
}

// CartesianPoint is a local (x, y) offset in meters from an Origin.
type CartesianPoint struct {
	X, Y float64
}

// ToGeographic converts a local Cartesian offset to a geographic point,
// anchored at origin: dLatRad = y/R, dLonRad = x / (R * cos(lat0)).
func ToGeographic(origin Origin, p CartesianPoint) GeoPoint {
	lat0Rad := origin.LatDeg * math.Pi / 180
	dLat := p.Y / EarthRadiusMeters
	dLon := p.X / (EarthRadiusMeters * math.Cos(lat0Rad))

	return GeoPoint{
		LatDeg: origin.LatDeg + dLat*180/math.Pi,
		LonDeg: origin.LonDeg + dLon*180/math.Pi,
	}
}

// ToCartesian converts a geographic point to a local Cartesian offset
// from origin: the inverse of ToGeographic.
func ToCartesian(origin Origin, p GeoPoint) CartesianPoint {
	lat0Rad := origin.LatDeg * math.Pi / 180
	dLatRad := (p.LatDeg - origin.LatDeg) * math.Pi / 180
	dLonRad := (p.LonDeg - origin.LonDeg) * math.Pi / 180

	return CartesianPoint{
		X: dLonRad * EarthRadiusMeters * math.Cos(lat0Rad),
		Y: dLatRad * EarthRadiusMeters,
	}
}

// HaversineDistance returns the great-circle distance in meters between
// two geographic points.
func HaversineDistance(a, b GeoPoint) float64 {
	lat1 := a.LatDeg * math.Pi / 180
	lat2 := b.LatDeg * math.Pi / 180
	dLat := (b.LatDeg - a.LatDeg) * math.Pi / 180
	dLon := (b.LonDeg - a.LonDeg) * math.Pi / 180

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)
	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon

	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}
