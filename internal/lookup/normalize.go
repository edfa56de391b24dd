package lookup

import (
	"math"
	"strconv"
	"strings"

	"github.com/evyataryagoni/iptracker/internal/models"
)

// Normalize reshapes a raw ipinfo.io payload into a LookupResult.
// Every field is treated as untrusted: anything missing or not a string
// becomes "", and coordinates are only kept when both halves of "loc" parse.
func Normalize(payload map[string]any) models.LookupResult {
	lat, lon := ParseLoc(stringField(payload, "loc"))

	return models.LookupResult{
		IP:        stringField(payload, "ip"),
		City:      stringField(payload, "city"),
		Region:    stringField(payload, "region"),
		Country:   stringField(payload, "country"),
		Latitude:  lat,
		Longitude: lon,
		ISP:       stringField(payload, "org"),
		Timezone:  stringField(payload, "timezone"),
	}
}

// ParseLoc splits a "lat,long" string. Extra components are ignored.
// Returns (nil, nil) unless both of the first two components are finite floats.
func ParseLoc(loc string) (lat, lon *float64) {
	parts := strings.Split(loc, ",")
	if len(parts) < 2 {
		return nil, nil
	}

	latitude, ok := parseCoordinate(parts[0])
	if !ok {
		return nil, nil
	}
	longitude, ok := parseCoordinate(parts[1])
	if !ok {
		return nil, nil
	}

	return &latitude, &longitude
}

func parseCoordinate(s string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

func stringField(payload map[string]any, key string) string {
	value, ok := payload[key].(string)
	if !ok {
		return ""
	}
	return value
}
