package fitapp

// semicircleDegrees is 180 / 2^31. A power of two, so the float64 value is exact.
const semicircleDegrees = 180.0 / (1 << 31)

// SemicirclesToDegrees converts a device semicircle angle to decimal degrees.
func SemicirclesToDegrees(semicircles int64) float64 {
	return float64(semicircles) * semicircleDegrees
}

// DegreesToSemicircles is the inverse of SemicirclesToDegrees.
func DegreesToSemicircles(deg float64) float64 {
	return deg / semicircleDegrees
}

// ExtractPath keeps records carrying both coordinates, in their original order,
// and averages them into a centroid.
func ExtractPath(records []RecordPoint) GeoPath {
	path := GeoPath{Points: make([]LatLng, 0, len(records))}
	var sumLat, sumLong float64
	for _, r := range records {
		if r.PositionLat == nil || r.PositionLong == nil {
			continue
		}
		p := LatLng{
			Lat:  SemicirclesToDegrees(*r.PositionLat),
			Long: SemicirclesToDegrees(*r.PositionLong),
		}
		sumLat += p.Lat
		sumLong += p.Long
		path.Points = append(path.Points, p)
	}
	if n := len(path.Points); n > 0 {
		path.Centroid = &LatLng{Lat: sumLat / float64(n), Long: sumLong / float64(n)}
	}
	return path
}
