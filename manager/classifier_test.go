package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		coordinate bool
		lat, lon   float64
	}{
		{name: "comma separated", text: "27.95, -82.46", coordinate: true, lat: 27.95, lon: -82.46},
		{name: "space separated", text: "48.85 2.35", coordinate: true, lat: 48.85, lon: 2.35},
		{name: "no space after comma", text: "-33.9,151.2", coordinate: true, lat: -33.9, lon: 151.2},
		{name: "explicit plus signs", text: "+10,+20", coordinate: true, lat: 10, lon: 20},
		{name: "surrounding whitespace", text: "  1.5 , 2.5  ", coordinate: true, lat: 1.5, lon: 2.5},
		{name: "bounds inclusive", text: "90, -180", coordinate: true, lat: 90, lon: -180},
		{name: "latitude out of range", text: "99, 10"},
		{name: "longitude out of range", text: "45, 181"},
		{name: "three digit latitude", text: "100, 10"},
		{name: "four digit longitude", text: "10, 1000"},
		{name: "place name", text: "London"},
		{name: "postal code", text: "33602"},
		{name: "single number", text: "27.95"},
		{name: "name with number", text: "Route 66, Arizona"},
		{name: "empty", text: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Classify(tt.text)

			assert.Equal(t, tt.coordinate, in.Coordinate)
			if tt.coordinate {
				assert.InDelta(t, tt.lat, in.Lat, 1e-9)
				assert.InDelta(t, tt.lon, in.Lon, 1e-9)
			}
		})
	}
}

func TestClassifyTrimsFreeText(t *testing.T) {
	in := Classify("  Tampa, FL ")

	assert.False(t, in.Coordinate)
	assert.Equal(t, "Tampa, FL", in.Text)
}
