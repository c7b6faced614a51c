package models

import (
	"fmt"
	"strconv"
	"strings"
)

// VisualInput is an image attached to a query.
type VisualInput struct {
	// Data is base64 encoded, optionally carrying a data URL prefix.
	Data     string `json:"data"`
	MIMEType string `json:"mime_type"`
}

// RawData returns the base64 payload without any "data:<mime>;base64," prefix.
func (v VisualInput) RawData() string {
	if i := strings.Index(v.Data, ","); i >= 0 && strings.HasPrefix(v.Data, "data:") {
		return v.Data[i+1:]
	}
	return v.Data
}

// Location is a device position used for maps grounding.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String formats the location as "lat,lng".
func (l Location) String() string {
	return strconv.FormatFloat(l.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(l.Longitude, 'f', -1, 64)
}

// ParseLocation parses a "lat,lng" pair.
func ParseLocation(s string) (*Location, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid location %q (expected lat,lng)", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", parts[0], err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", parts[1], err)
	}

	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("latitude out of range: %v", lat)
	}
	if lng < -180 || lng > 180 {
		return nil, fmt.Errorf("longitude out of range: %v", lng)
	}

	return &Location{Latitude: lat, Longitude: lng}, nil
}

// SearchOptions contains the parameters of one search invocation.
type SearchOptions struct {
	Query    string
	Mode     Mode
	Tone     Tone
	Location *Location
	Visual   *VisualInput
}

// DefaultSearchOptions returns options with sensible defaults.
func DefaultSearchOptions(query string) SearchOptions {
	return SearchOptions{
		Query: query,
		Mode:  ModeAll,
		Tone:  ToneStandard,
	}
}
