// Package polyline implements the standard encoded-polyline algorithm used by
// directions providers: successive signed coordinate deltas, 5-bit chunked,
// offset by 63, accumulated from an implicit origin at precision 1e5.
package polyline

import "math"

const precision = 1e5

// Point is a decoded polyline vertex.
type Point struct {
	Lat float64
	Lon float64
}

// Decode converts an encoded polyline string into its ordered vertices.
// An empty string decodes to nil.
func Decode(encoded string) []Point {
	if encoded == "" {
		return nil
	}

	var points []Point
	var lat, lon int
	i := 0

	for i < len(encoded) {
		dLat, next := decodeDelta(encoded, i)
		lat += dLat
		dLon, next2 := decodeDelta(encoded, next)
		lon += dLon
		i = next2

		points = append(points, Point{
			Lat: float64(lat) / precision,
			Lon: float64(lon) / precision,
		})
	}

	return points
}

// decodeDelta reads one signed delta starting at index i and returns it with
// the index of the next unread byte.
func decodeDelta(encoded string, i int) (int, int) {
	result := 0
	shift := 0

	for i < len(encoded) {
		chunk := int(encoded[i]) - 63
		i++
		result |= (chunk & 0x1f) << shift
		shift += 5
		if chunk < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), i
	}
	return result >> 1, i
}

// Encode converts an ordered list of vertices into an encoded polyline string.
func Encode(points []Point) string {
	if len(points) == 0 {
		return ""
	}

	buf := make([]byte, 0, len(points)*4)
	var prevLat, prevLon int

	for _, p := range points {
		lat := int(math.Round(p.Lat * precision))
		lon := int(math.Round(p.Lon * precision))
		buf = appendDelta(buf, lat-prevLat)
		buf = appendDelta(buf, lon-prevLon)
		prevLat, prevLon = lat, lon
	}

	return string(buf)
}

func appendDelta(buf []byte, value int) []byte {
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}

	for value >= 0x20 {
		buf = append(buf, byte((value&0x1f)|0x20)+63)
		value >>= 5
	}
	return append(buf, byte(value)+63)
}

// LengthMeters returns the total great-circle length of the polyline.
func LengthMeters(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(points); i++ {
		total += haversine(points[i-1], points[i])
	}
	return total
}

const earthRadiusMeters = 6371000

func haversine(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
