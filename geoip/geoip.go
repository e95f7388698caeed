// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package geoip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

const lookupTimeout = 5 * time.Second

var (
	// ErrLocalAddress marks loopback/private addresses that no public
	// provider can resolve; callers skip enrichment for them.
	ErrLocalAddress = errors.New("geoip: local address")

	ErrNotFound = errors.New("geoip: provider could not resolve address")
)

// Location is the resolved place for an IP address, in the provider's
// field vocabulary (ip-api.com).
type Location struct {
	Query    string  `json:"query"`
	Country  string  `json:"country"`
	Region   string  `json:"regionName"`
	City     string  `json:"city"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone"`
	ISP      string  `json:"isp"`
	Org      string  `json:"org"`
}

// AsPayload renders the location as the nested object stored inside
// submission payloads.
func (l *Location) AsPayload() map[string]any {
	return map[string]any{
		"query":    l.Query,
		"country":  l.Country,
		"region":   l.Region,
		"city":     l.City,
		"lat":      l.Lat,
		"lon":      l.Lon,
		"timezone": l.Timezone,
		"isp":      l.ISP,
		"org":      l.Org,
	}
}

// Client resolves IP addresses against an ip-api.com style JSON endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: lookupTimeout},
	}
}

// Lookup resolves a single IP address. Loopback, private, and
// unparseable addresses return ErrLocalAddress without a network call.
func (c *Client) Lookup(ctx context.Context, ip string) (*Location, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return nil, ErrLocalAddress
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(ip), nil)
	if err != nil {
		return nil, fmt.Errorf("geoip: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geoip: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("geoip: provider returned status %d", resp.StatusCode)
	}

	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Location
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("geoip: decode response: %w", err)
	}
	if body.Status != "success" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, body.Message)
	}

	loc := body.Location
	return &loc, nil
}
