// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package geoip resolves client IP addresses to locations via an
ip-api.com style JSON provider.

# Usage

	client := geoip.NewClient(cfg.GeoProviderURL)
	loc, err := client.Lookup(ctx, ip)

Lookups are bounded by a 5 second HTTP timeout. Loopback, private, and
unspecified addresses return ErrLocalAddress without touching the
network, since no public provider can resolve them.

# Best effort

Every error from Lookup is non-fatal to the caller: the confirmation
handler stores the submission without location data and the flow
proceeds. Only the payload fidelity degrades.

# Response shape

The provider returns:

	{"status":"success","query":"1.2.3.4","country":"France",
	 "regionName":"IDF","city":"Paris","lat":48.85,"lon":2.35,
	 "timezone":"Europe/Paris","isp":"...","org":"..."}

A status other than "success" maps to ErrNotFound. Location.AsPayload
renders the nested object stored under "ip_resolved_location" in
submission payloads.
*/
package geoip
