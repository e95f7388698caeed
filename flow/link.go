// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package flow

import (
	"fmt"
	"net/url"
)

// Link is the parsed confirmation link. All carried parameters are
// optional at parse time; which ones a mode requires is checked when
// an attempt runs.
type Link struct {
	Raw   string
	UID   string
	Token string
	// API overrides the configured endpoint base.
	API string
}

func ParseLink(raw string) (Link, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Link{}, fmt.Errorf("flow: invalid link: %w", err)
	}

	q := u.Query()
	return Link{
		Raw:   raw,
		UID:   q.Get("uid"),
		Token: q.Get("token"),
		API:   q.Get("api"),
	}, nil
}
