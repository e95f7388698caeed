// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package geoip

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookupSuccess(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"query": "1.2.3.4",
			"country": "France",
			"regionName": "Ile-de-France",
			"city": "Paris",
			"lat": 48.85,
			"lon": 2.35,
			"timezone": "Europe/Paris",
			"isp": "Example ISP",
			"org": "Example Org"
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	loc, err := client.Lookup(context.Background(), "1.2.3.4")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	if requestedPath != "/1.2.3.4" {
		t.Errorf("requested path = %q, want /1.2.3.4", requestedPath)
	}
	if loc.City != "Paris" || loc.Country != "France" || loc.Query != "1.2.3.4" {
		t.Errorf("unexpected location: %+v", loc)
	}
	if loc.Lat != 48.85 || loc.Lon != 2.35 {
		t.Errorf("unexpected coordinates: %f, %f", loc.Lat, loc.Lon)
	}

	payload := loc.AsPayload()
	if payload["city"] != "Paris" || payload["timezone"] != "Europe/Paris" {
		t.Errorf("unexpected payload rendering: %v", payload)
	}
}

func TestLookupLocalAddresses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("local addresses must not reach the provider")
	}))
	defer server.Close()

	client := NewClient(server.URL)

	tests := []string{"127.0.0.1", "::1", "10.0.0.5", "192.168.1.2", "0.0.0.0", "", "not-an-ip"}
	for _, ip := range tests {
		t.Run(ip, func(t *testing.T) {
			_, err := client.Lookup(context.Background(), ip)
			if !errors.Is(err, ErrLocalAddress) {
				t.Errorf("Lookup(%q) error = %v, want ErrLocalAddress", ip, err)
			}
		})
	}
}

func TestLookupProviderFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"non-2xx status",
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			"malformed body",
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			"provider fail status",
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"fail","message":"reserved range"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(server.URL)
			if _, err := client.Lookup(context.Background(), "1.2.3.4"); err == nil {
				t.Error("Lookup() expected error, got nil")
			}
		})
	}
}

func TestLookupUnreachableProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(server.URL)
	if _, err := client.Lookup(context.Background(), "1.2.3.4"); err == nil {
		t.Error("Lookup() expected error for unreachable provider")
	}
}
