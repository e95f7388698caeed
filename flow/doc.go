// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package flow implements the client side of the confirmation protocol:
resolve an identity, enrich it best effort with geolocation data, POST
the assembled payload to the confirmation endpoint, and report every
state transition to the caller.

# State Machine

	Idle → Collecting → Submitting → Succeeded
	                 ↘            ↘ Failed → Idle

Failed returns the flow to Idle so the user can trigger another
attempt; Succeeded is terminal for the flow instance. At most one
attempt is in flight at a time (ErrInFlight), replacing the page's
disabled-button guard.

# Identity

The identity is resolved exactly once, at construction:

 1. the link's uid query parameter,
 2. the host bridge user id,
 3. a freshly generated random identifier.

Resolution cannot fail, and the result is stable across retries.

# Usage

	f, err := flow.New(link, flow.Config{
		EndpointBase:  "https://verify.example",
		EnrichmentURL: "https://ipapi.example/json",
		Reporter:      reporter,
	})
	if err != nil { ... }
	err = f.Run(ctx, nil) // retry by calling Run again

# Failure Taxonomy

  - ErrMissingParam: incomplete link (token, endpoint) or absent host
    bridge; no network call is made.
  - ErrValidation: a required form field is empty; no network call.
  - Enrichment failure: not an error at all; fields degrade to the
    Unknown sentinel and the flow proceeds.
  - ErrTransport: the request failed before a response arrived.
  - ErrRejected: non-2xx status, or a 2xx body carrying ok:false or an
    error string. Both are the same logical failure, and any
    server-provided detail message is surfaced.

# Variants

Config covers what used to differ between page variants: ModeRegister
posts the host bridge user as a registration form instead of a
confirmation payload, RequiredFields adds a form step, an optional
Locator contributes device coordinates under a 12 second bound, and
PostSuccessCloseBridge schedules closing the hosted view shortly after
success.
*/
package flow
