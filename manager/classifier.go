package manager

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var coordinatePattern = regexp.MustCompile(`^([+-]?\d{1,2}(?:\.\d+)?)\s*[,\s]\s*([+-]?\d{1,3}(?:\.\d+)?)$`)

// Input is the result of classifying user text.
type Input struct {
	Coordinate bool
	Lat, Lon   float64
	Text       string
}

// Classify reports whether text is a "lat, lon" pair within bounds.
// Anything else, including out-of-range pairs, is free text.
func Classify(text string) Input {
	t := strings.TrimSpace(text)

	m := coordinatePattern.FindStringSubmatch(t)
	if m == nil {
		return Input{Text: t}
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Input{Text: t}
	}
	lon, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Input{Text: t}
	}

	if math.Abs(lat) > 90 || math.Abs(lon) > 180 {
		return Input{Text: t}
	}

	return Input{Coordinate: true, Lat: lat, Lon: lon, Text: t}
}
