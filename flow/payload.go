// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package flow

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"time"
)

// Unknown is the sentinel substituted for every enrichment field that
// could not be resolved. It is distinguishable from legitimate data,
// which a provider never returns as the literal string "unknown".
const Unknown = "unknown"

// Payload is the confirmation body assembled fresh for every attempt.
// Nothing in it is cached between attempts except the resolved uid.
type Payload struct {
	UID            string            `json:"uid"`
	TimestampUTC   string            `json:"timestamp_utc"`
	TimestampLocal string            `json:"timestamp_local"`
	Timezone       string            `json:"timezone"`
	Client         ClientContext     `json:"client_context"`
	Geo            GeoEnrichment     `json:"geo_enrichment"`
	Form           map[string]string `json:"form_fields,omitempty"`
	Location       *Coordinates      `json:"location,omitempty"`
}

// ClientContext is a static snapshot of the calling environment, taken
// once at flow construction.
type ClientContext struct {
	UserAgent string `json:"user_agent"`
	Link      string `json:"link"`
	Locale    string `json:"locale"`
	Platform  string `json:"platform"`
}

// GeoEnrichment carries the best-effort IP-lookup result. Every field
// degrades independently to the Unknown sentinel.
type GeoEnrichment struct {
	IP          string `json:"ip"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	City        string `json:"city"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func collectClientContext(userAgent, link string) ClientContext {
	locale := os.Getenv("LC_ALL")
	if locale == "" {
		locale = os.Getenv("LANG")
	}
	if locale == "" {
		locale = Unknown
	}
	return ClientContext{
		UserAgent: userAgent,
		Link:      link,
		Locale:    locale,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (f *Flow) buildPayload(ctx context.Context, formFields map[string]string) Payload {
	now := time.Now()
	zone, _ := now.Zone()

	p := Payload{
		UID:            f.uid,
		TimestampUTC:   now.UTC().Format(time.RFC3339),
		TimestampLocal: now.Format(time.RFC3339),
		Timezone:       zone,
		Client:         f.clientCtx,
		Geo:            f.enrich(ctx),
	}
	if len(formFields) > 0 {
		p.Form = formFields
	}
	if f.cfg.Locator != nil {
		if loc := f.locate(ctx); loc != nil {
			p.Location = loc
		}
	}
	return p
}

// enrich queries the geolocation-by-IP service. Network failure, a
// non-success status, and a malformed body all degrade identically to
// sentinel values; enrichment never blocks the flow from submitting.
func (f *Flow) enrich(ctx context.Context) GeoEnrichment {
	unknown := GeoEnrichment{IP: Unknown, Country: Unknown, CountryCode: Unknown, City: Unknown}
	if f.cfg.EnrichmentURL == "" {
		return unknown
	}

	ctx, cancel := context.WithTimeout(ctx, enrichTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.EnrichmentURL, nil)
	if err != nil {
		return unknown
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return unknown
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return unknown
	}

	var body struct {
		IP          string `json:"ip"`
		City        string `json:"city"`
		CountryName string `json:"country_name"`
		Country     string `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return unknown
	}

	geo := unknown
	if body.IP != "" {
		geo.IP = body.IP
	}
	if body.City != "" {
		geo.City = body.City
	}
	if body.CountryName != "" {
		geo.Country = body.CountryName
	}
	if body.Country != "" {
		geo.CountryCode = body.Country
	}
	return geo
}

// locate asks the optional device locator under a fixed bound. A slow
// or failing locator is treated as absent.
func (f *Flow) locate(ctx context.Context) *Coordinates {
	ctx, cancel := context.WithTimeout(ctx, locateTimeout)
	defer cancel()

	lat, lon, err := f.cfg.Locator.Locate(ctx)
	if err != nil {
		return nil
	}
	return &Coordinates{Lat: lat, Lon: lon}
}
