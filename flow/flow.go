// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package flow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// States of one confirmation attempt. Failed transitions back to Idle
// so the user can retry; Succeeded is terminal for the flow instance.
type State int

const (
	StateIdle State = iota
	StateCollecting
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollecting:
		return "collecting"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	ErrInFlight     = errors.New("flow: submission already in progress")
	ErrAlreadyDone  = errors.New("flow: already confirmed")
	ErrMissingParam = errors.New("flow: missing required parameter")
	ErrValidation   = errors.New("flow: form validation failed")
	ErrRejected     = errors.New("flow: server rejected submission")
	ErrTransport    = errors.New("flow: request failed")
)

// Reporter receives every state transition with a human-readable
// message. It stands in for the page's status element and button
// styling, so the orchestration stays testable without a document.
type Reporter interface {
	ReportState(state State, message string)
}

type nopReporter struct{}

func (nopReporter) ReportState(State, string) {}

// BridgeUser is the identity a hosting surface exposes to the page.
type BridgeUser struct {
	ID        int64
	ChatID    int64
	Username  string
	FirstName string
	LastName  string
}

// Bridge is the host-bridge capability of an embedding environment:
// identity plus the ability to close the hosted view.
type Bridge interface {
	User() (*BridgeUser, error)
	Close()
}

// Locator is the optional device-location capability. It is queried
// under a fixed 12 second bound and its failure is never surfaced.
type Locator interface {
	Locate(ctx context.Context) (lat, lon float64, err error)
}

type Mode string

const (
	// ModeConfirm posts a confirmation payload; uid and token come
	// from the link.
	ModeConfirm Mode = "confirm"
	// ModeRegister posts a registration form built from the host
	// bridge identity.
	ModeRegister Mode = "register"
)

// What happens to the trigger surface after a successful submission.
type PostSuccess int

const (
	// PostSuccessDisable leaves the flow terminal; the caller keeps
	// its control disabled.
	PostSuccessDisable PostSuccess = iota
	// PostSuccessCloseBridge schedules Bridge.Close after CloseDelay
	// so the success message can be read first.
	PostSuccessCloseBridge
)

const (
	defaultCloseDelay = 1500 * time.Millisecond
	defaultUserAgent  = "uwezert-confirm/1.0"
	enrichTimeout     = 5 * time.Second
	locateTimeout     = 12 * time.Second
	maxResponseBody   = 1 << 20
)

// Config collects everything that varied across the page variants:
// endpoints, the form step, the identity source, and the post-success
// action. Resolved once at flow construction.
type Config struct {
	// EndpointBase is the confirmation service base URL. A link's
	// "api" query parameter overrides it.
	EndpointBase string
	// EnrichmentURL is the geolocation-by-IP service queried best
	// effort before submission. Empty disables enrichment.
	EnrichmentURL string
	Mode          Mode
	// RequiredFields names form fields that must be non-empty before
	// any network call.
	RequiredFields []string
	PostSuccess    PostSuccess
	CloseDelay     time.Duration
	UserAgent      string
	HTTPClient     *http.Client
	Bridge         Bridge
	Locator        Locator
	Reporter       Reporter
}

// Flow is one page load's confirmation flow. The identity is resolved
// exactly once at construction and stays stable across retries; only
// the generated fallback is non-deterministic between page loads.
type Flow struct {
	cfg       Config
	link      Link
	uid       string
	token     string
	endpoint  string
	client    *http.Client
	reporter  Reporter
	clientCtx ClientContext

	mu   sync.Mutex
	done bool
}

// New parses the confirmation link and resolves the identity.
// Identity policy: explicit uid parameter, then the host bridge user,
// then a freshly generated random identifier. Resolution cannot fail.
func New(rawLink string, cfg Config) (*Flow, error) {
	link, err := ParseLink(rawLink)
	if err != nil {
		return nil, err
	}

	if cfg.Mode == "" {
		cfg.Mode = ModeConfirm
	}
	if cfg.CloseDelay <= 0 {
		cfg.CloseDelay = defaultCloseDelay
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	reporter := cfg.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}

	uid := link.UID
	if uid == "" && cfg.Bridge != nil {
		if user, err := cfg.Bridge.User(); err == nil && user != nil && user.ID != 0 {
			uid = strconv.FormatInt(user.ID, 10)
		}
	}
	if uid == "" {
		uid = uuid.NewString()
	}

	endpoint := cfg.EndpointBase
	if link.API != "" {
		endpoint = link.API
	}

	f := &Flow{
		cfg:       cfg,
		link:      link,
		uid:       uid,
		token:     link.Token,
		endpoint:  strings.TrimRight(endpoint, "/"),
		client:    client,
		reporter:  reporter,
		clientCtx: collectClientContext(cfg.UserAgent, rawLink),
	}
	f.reporter.ReportState(StateIdle, "")
	return f, nil
}

// UID returns the identity resolved at construction.
func (f *Flow) UID() string { return f.uid }

// Run performs one submission attempt. At most one attempt is in
// flight at a time; a failed attempt returns the flow to Idle and the
// next call is a fresh attempt with the same identity. There is no
// automatic retry.
func (f *Flow) Run(ctx context.Context, formFields map[string]string) error {
	if !f.mu.TryLock() {
		return ErrInFlight
	}
	defer f.mu.Unlock()

	if f.done {
		return ErrAlreadyDone
	}

	f.reporter.ReportState(StateCollecting, "collecting data")

	// Preflight: incomplete link parameters abort before any network
	// call.
	if f.endpoint == "" {
		return f.fail(ErrMissingParam, "confirmation endpoint is not configured")
	}
	var user *BridgeUser
	switch f.cfg.Mode {
	case ModeConfirm:
		if f.token == "" {
			return f.fail(ErrMissingParam, "link is missing the token parameter")
		}
	case ModeRegister:
		if f.cfg.Bridge == nil {
			return f.fail(ErrMissingParam, "host bridge is not available")
		}
		var err error
		user, err = f.cfg.Bridge.User()
		if err != nil || user == nil || user.ID == 0 {
			return f.fail(ErrMissingParam, "host bridge did not provide a user")
		}
	default:
		return f.fail(ErrMissingParam, fmt.Sprintf("unknown mode %q", f.cfg.Mode))
	}

	// Form validation also runs before any network call.
	for _, name := range f.cfg.RequiredFields {
		if strings.TrimSpace(formFields[name]) == "" {
			return f.fail(ErrValidation, fmt.Sprintf("field %q must not be empty", name))
		}
	}

	var body any
	path := "/confirm"
	if f.cfg.Mode == ModeRegister {
		// Registration carries only the bridge identity; enrichment
		// belongs to the confirmation payload alone.
		path = "/register"
		body = registerEnvelope{
			UID:       f.uid,
			UserID:    user.ID,
			ChatID:    user.ChatID,
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		}
	} else {
		body = confirmEnvelope{UID: f.uid, Token: f.token, Payload: f.buildPayload(ctx, formFields)}
	}

	f.reporter.ReportState(StateSubmitting, "sending confirmation")

	reply, err := f.post(ctx, f.endpoint+path, body)
	if err != nil {
		return err
	}

	f.done = true
	msg := reply.Message
	if msg == "" {
		msg = "confirmation saved"
	}
	f.reporter.ReportState(StateSucceeded, msg)

	if f.cfg.PostSuccess == PostSuccessCloseBridge && f.cfg.Bridge != nil {
		// Leave the success message readable before closing the
		// hosted view.
		time.AfterFunc(f.cfg.CloseDelay, f.cfg.Bridge.Close)
	}
	return nil
}

type confirmEnvelope struct {
	UID     string  `json:"uid"`
	Token   string  `json:"token"`
	Payload Payload `json:"payload"`
}

type registerEnvelope struct {
	UID       string `json:"uid"`
	UserID    int64  `json:"user_id"`
	ChatID    int64  `json:"chat_id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// serverReply is the optional JSON body of a confirmation response.
// A success status carrying ok:false or an error string is a logical
// rejection and treated exactly like a non-2xx status.
type serverReply struct {
	OK      *bool  `json:"ok"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (f *Flow) post(ctx context.Context, url string, body any) (*serverReply, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, f.fail(ErrTransport, "could not encode payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return nil, f.fail(ErrTransport, "could not build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.fail(ErrTransport, "network error, please try again")
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	var reply serverReply
	_ = json.Unmarshal(raw, &reply) // body is optional

	detail := reply.Message
	if detail == "" {
		detail = reply.Error
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("server returned status %d", resp.StatusCode)
		if detail != "" {
			msg += ": " + detail
		}
		return nil, f.fail(ErrRejected, msg)
	}

	if (reply.OK != nil && !*reply.OK) || reply.Error != "" {
		msg := "server rejected the submission"
		if detail != "" {
			msg = detail
		}
		return nil, f.fail(ErrRejected, msg)
	}

	return &reply, nil
}

// fail reports the failure and returns the flow to Idle so the user
// can trigger another attempt.
func (f *Flow) fail(err error, msg string) error {
	f.reporter.ReportState(StateFailed, msg)
	f.reporter.ReportState(StateIdle, "")
	return fmt.Errorf("%w: %s", err, msg)
}
