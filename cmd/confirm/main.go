// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command confirm submits a single participation confirmation from the
// command line. It is the terminal counterpart of the hosted
// confirmation page: pass the invite link you received and the tool
// walks the same flow the page does, printing each state transition.
//
// Usage:
//
//	confirm -link "https://verify.uwezert.example/c?uid=abc123&token=..." \
//	        -endpoint https://api.uwezert.example \
//	        -field region=Berlin
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/uwezert/verify/flow"
)

// slogReporter adapts the process logger to flow state reporting.
type slogReporter struct{}

func (slogReporter) ReportState(state flow.State, message string) {
	slog.Info("flow state", "state", state.String(), "message", message)
}

// fixedLocator supplies coordinates given on the command line; a
// terminal has no device location to ask for.
type fixedLocator struct {
	lat, lon float64
}

func (l fixedLocator) Locate(ctx context.Context) (float64, float64, error) {
	return l.lat, l.lon, nil
}

func main() {
	var (
		link      string
		endpoint  string
		enrichURL string
		register  bool
		fields    = map[string]string{}
		required  string
		locator   flow.Locator
	)

	fs := flag.NewFlagSet("confirm", flag.ExitOnError)
	fs.StringVar(&link, "link", os.Getenv("CONFIRM_LINK"), "invite link carrying uid and token")
	fs.StringVar(&endpoint, "endpoint", os.Getenv("CONFIRM_ENDPOINT"), "confirmation API base URL")
	fs.StringVar(&enrichURL, "enrich-url", os.Getenv("CONFIRM_ENRICH_URL"), "geolocation enrichment endpoint (optional)")
	fs.BoolVar(&register, "register", false, "register instead of confirming")
	fs.StringVar(&required, "required", "", "comma-separated form fields that must be filled")
	fs.Func("field", "form field as name=value (repeatable)", func(v string) error {
		name, value, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			return fmt.Errorf("field must be name=value, got %q", v)
		}
		fields[name] = value
		return nil
	})
	fs.Func("coords", "device coordinates as lat,lon (optional)", func(v string) error {
		latStr, lonStr, ok := strings.Cut(v, ",")
		if !ok {
			return fmt.Errorf("coords must be lat,lon, got %q", v)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		if err != nil {
			return fmt.Errorf("invalid latitude %q", latStr)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if err != nil {
			return fmt.Errorf("invalid longitude %q", lonStr)
		}
		locator = fixedLocator{lat: lat, lon: lon}
		return nil
	})
	fs.Parse(os.Args[1:])

	if link == "" {
		slog.Error("no invite link given; pass -link or set CONFIRM_LINK")
		os.Exit(1)
	}

	mode := flow.ModeConfirm
	if register {
		mode = flow.ModeRegister
	}
	var requiredFields []string
	if required != "" {
		for _, name := range strings.Split(required, ",") {
			requiredFields = append(requiredFields, strings.TrimSpace(name))
		}
	}

	f, err := flow.New(link, flow.Config{
		EndpointBase:   endpoint,
		EnrichmentURL:  enrichURL,
		Mode:           mode,
		RequiredFields: requiredFields,
		Locator:        locator,
		Reporter:       slogReporter{},
	})
	if err != nil {
		slog.Error("invalid invite link", "error", err)
		os.Exit(1)
	}

	slog.Info("submitting confirmation", "uid", f.UID())
	if err := f.Run(context.Background(), fields); err != nil {
		slog.Error("confirmation failed", "error", err)
		os.Exit(1)
	}
}
