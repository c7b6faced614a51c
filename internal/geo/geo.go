// Package geo resolves the device location used for maps grounding.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	"github.com/diogo/nexus-go/pkg/models"
)

// DefaultURL is the IP geolocation endpoint used when none is configured.
const DefaultURL = "https://ipapi.co/json/"

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36"

// ErrUnavailable is returned when no location can be determined.
var ErrUnavailable = errors.New("location unavailable")

// Locator determines the current location.
type Locator interface {
	Locate(ctx context.Context) (*models.Location, error)
}

// Doer performs HTTP requests. tls_client.HttpClient satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// IPLocator looks up the location of the public IP address.
type IPLocator struct {
	url    string
	client Doer
}

// NewIPLocator creates a locator with a Chrome-fingerprinted HTTP client.
func NewIPLocator(url string, timeoutSeconds int) (*IPLocator, error) {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 10
	}

	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(timeoutSeconds),
		tls_client.WithClientProfile(profiles.Chrome_133),
		tls_client.WithRandomTLSExtensionOrder(),
	}

	client, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create TLS client: %w", err)
	}

	return NewIPLocatorWithClient(url, client), nil
}

// NewIPLocatorWithClient creates a locator over an existing HTTP client.
func NewIPLocatorWithClient(url string, client Doer) *IPLocator {
	if url == "" {
		url = DefaultURL
	}
	return &IPLocator{url: url, client: client}
}

// ipResponse accepts both the ipapi.co and ip-api.com field names.
type ipResponse struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Error     bool     `json:"error"`
	Reason    string   `json:"reason"`
	Status    string   `json:"status"`
	Message   string   `json:"message"`
}

// Locate performs one lookup. There is no retry.
func (l *IPLocator) Locate(ctx context.Context) (*models.Location, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = http.Header{
		"Accept":     {"application/json"},
		"User-Agent": {userAgent},
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geolocation request failed %d: %s", resp.StatusCode, string(body))
	}

	var ip ipResponse
	if err := json.NewDecoder(resp.Body).Decode(&ip); err != nil {
		return nil, fmt.Errorf("failed to decode geolocation response: %w", err)
	}

	return ip.location()
}

func (r ipResponse) location() (*models.Location, error) {
	if r.Error || r.Status == "fail" {
		reason := r.Reason
		if reason == "" {
			reason = r.Message
		}
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, reason)
	}

	lat, lng := r.Latitude, r.Longitude
	if lat == nil || lng == nil {
		lat, lng = r.Lat, r.Lon
	}
	if lat == nil || lng == nil {
		return nil, ErrUnavailable
	}

	return &models.Location{Latitude: *lat, Longitude: *lng}, nil
}

// StaticLocator always returns a fixed location.
type StaticLocator struct {
	Location *models.Location
}

// Locate returns the configured location, or ErrUnavailable when unset.
func (s StaticLocator) Locate(ctx context.Context) (*models.Location, error) {
	if s.Location == nil {
		return nil, ErrUnavailable
	}
	loc := *s.Location
	return &loc, nil
}

// Disabled is a locator that never finds a location.
type Disabled struct{}

func (Disabled) Locate(ctx context.Context) (*models.Location, error) {
	return nil, ErrUnavailable
}

var (
	_ Locator = (*IPLocator)(nil)
	_ Locator = StaticLocator{}
	_ Locator = Disabled{}
	_ Doer    = tls_client.HttpClient(nil)
)
