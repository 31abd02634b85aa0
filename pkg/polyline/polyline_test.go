package polyline

import (
	"math"
	"testing"
)

// Reference string from the published polyline algorithm documentation.
const googleExample = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"

func TestDecode_ReferenceExample(t *testing.T) {
	points := Decode(googleExample)

	want := []Point{
		{Lat: 38.5, Lon: -120.2},
		{Lat: 40.7, Lon: -120.95},
		{Lat: 43.252, Lon: -126.453},
	}

	if len(points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(points))
	}

	for i, p := range points {
		if math.Abs(p.Lat-want[i].Lat) > 1e-5 || math.Abs(p.Lon-want[i].Lon) > 1e-5 {
			t.Errorf("point %d: expected %+v, got %+v", i, want[i], p)
		}
	}
}

func TestDecode_Empty(t *testing.T) {
	if points := Decode(""); points != nil {
		t.Errorf("expected nil for empty input, got %v", points)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	original := []Point{
		{Lat: 52.3676, Lon: 4.9041},
		{Lat: 52.0907, Lon: 5.1214},
		{Lat: 51.9225, Lon: 4.47917},
	}

	decoded := Decode(Encode(original))

	if len(decoded) != len(original) {
		t.Fatalf("expected %d points after round trip, got %d", len(original), len(decoded))
	}

	for i := range original {
		if math.Abs(decoded[i].Lat-original[i].Lat) > 1e-5 {
			t.Errorf("point %d lat: expected %f, got %f", i, original[i].Lat, decoded[i].Lat)
		}
		if math.Abs(decoded[i].Lon-original[i].Lon) > 1e-5 {
			t.Errorf("point %d lon: expected %f, got %f", i, original[i].Lon, decoded[i].Lon)
		}
	}
}

func TestEncode_ReferenceExample(t *testing.T) {
	encoded := Encode([]Point{
		{Lat: 38.5, Lon: -120.2},
		{Lat: 40.7, Lon: -120.95},
		{Lat: 43.252, Lon: -126.453},
	})

	if encoded != googleExample {
		t.Errorf("expected %q, got %q", googleExample, encoded)
	}
}

func TestLengthMeters(t *testing.T) {
	// One degree of latitude is roughly 111 km.
	points := []Point{
		{Lat: 0, Lon: 0},
		{Lat: 1, Lon: 0},
	}

	length := LengthMeters(points)
	if math.Abs(length-111195) > 1000 {
		t.Errorf("expected ~111195m, got %f", length)
	}
}

func TestLengthMeters_Degenerate(t *testing.T) {
	if l := LengthMeters(nil); l != 0 {
		t.Errorf("expected 0 for nil, got %f", l)
	}
	if l := LengthMeters([]Point{{Lat: 1, Lon: 1}}); l != 0 {
		t.Errorf("expected 0 for single point, got %f", l)
	}
}
