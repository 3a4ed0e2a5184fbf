// Package commandapi es el cliente HTTP del endpoint de comandos y de las
// lecturas que necesita el core (lista canónica, sugerencias, perfiles).
package commandapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"baby-care-log/internal/domain/events"
	"baby-care-log/internal/middleware"
	"baby-care-log/internal/platform/httpclient"
)

type Options struct {
	BaseURL string
	Timeout time.Duration

	// Token va como Bearer. Si está vacío y DebugUserID no, se usa el header
	// de depuración (solo sirve contra un server en modo dev).
	Token       string
	DebugUserID string

	// Transport opcional (tests).
	Transport http.RoundTripper
}

type Client struct {
	http *httpclient.Client
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("commandapi: base url required")
	}

	hc, err := httpclient.NewWithBaseURL(opts.BaseURL, opts.Timeout)
	if err != nil {
		return nil, err
	}
	if opts.Transport != nil {
		hc.HTTP.Transport = opts.Transport
	}

	hc.DefaultHeaders = map[string]string{}
	switch {
	case strings.TrimSpace(opts.Token) != "":
		hc.DefaultHeaders["Authorization"] = "Bearer " + strings.TrimSpace(opts.Token)
	case strings.TrimSpace(opts.DebugUserID) != "":
		hc.DefaultHeaders[middleware.DebugUserHeader] = strings.TrimSpace(opts.DebugUserID)
	}

	return &Client{http: hc}, nil
}

// RunCommand manda payload (con __action) a POST /api/runCommand.
func (c *Client) RunCommand(ctx context.Context, payload events.Fields) error {
	return c.Execute(ctx, payload, nil)
}

// Execute es RunCommand decodificando la respuesta en out (puede ser nil).
func (c *Client) Execute(ctx context.Context, payload events.Fields, out any) error {
	if err := c.http.DoJSON(ctx, http.MethodPost, "/api/runCommand", nil, payload, out); err != nil {
		return fmt.Errorf("run %v: %w", payload[events.ActionKey], err)
	}
	return nil
}

// TopPrescriptions consulta FETCH_TOP_PRESCRIPTIONS.
func (c *Client) TopPrescriptions(ctx context.Context, profileID, searchText string) ([]string, error) {
	q := url.Values{}
	q.Set("profileId", profileID)
	q.Set("searchText", searchText)

	var resp struct {
		Prescriptions []string `json:"prescriptions"`
	}
	path := "/api/runCommand/" + string(events.ActionFetchTopPrescriptions) + "?" + q.Encode()
	if err := c.http.DoJSON(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch top prescriptions: %w", err)
	}
	return resp.Prescriptions, nil
}

// ListEvents trae la lista canónica del perfil, más reciente primero.
func (c *Client) ListEvents(ctx context.Context, profileID string, filter events.ListFilter) ([]events.Event, error) {
	q := url.Values{}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if len(filter.Kinds) > 0 {
		kinds := make([]string, len(filter.Kinds))
		for i, k := range filter.Kinds {
			kinds[i] = string(k)
		}
		q.Set("kinds", strings.Join(kinds, ","))
	}
	if filter.From != nil {
		q.Set("from", filter.From.UTC().Format(time.RFC3339))
	}
	if filter.To != nil {
		q.Set("to", filter.To.UTC().Format(time.RFC3339))
	}
	if filter.Query != "" {
		q.Set("q", filter.Query)
	}

	path := "/profiles/" + url.PathEscape(profileID) + "/events"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []events.Event
	if err := c.http.DoJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

// FindEvent lee un evento del perfil por id. Un 404 matchea events.ErrNotFound.
func (c *Client) FindEvent(ctx context.Context, profileID, id string) (events.Event, error) {
	path := "/profiles/" + url.PathEscape(profileID) + "/events/" + url.PathEscape(id)

	var out events.Event
	if err := c.http.DoJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		if errors.Is(err, httpclient.ErrNotFound) {
			return events.Event{}, fmt.Errorf("find event %s: %w: %w", id, events.ErrNotFound, err)
		}
		return events.Event{}, fmt.Errorf("find event %s: %w", id, err)
	}
	return out, nil
}

type Profile struct {
	ID          string     `json:"id"`
	OwnerUserID string     `json:"owner_user_id"`
	Name        string     `json:"name"`
	Nickname    string     `json:"nickname,omitempty"`
	Gender      string     `json:"gender"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Notes       string     `json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CreateProfileInput struct {
	Name        string `json:"name"`
	Nickname    string `json:"nickname,omitempty"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"` // YYYY-MM-DD
	Notes       string `json:"notes,omitempty"`
}

func (c *Client) CreateProfile(ctx context.Context, in CreateProfileInput) (Profile, error) {
	var out Profile
	if err := c.http.DoJSON(ctx, http.MethodPost, "/profiles", nil, in, &out); err != nil {
		return Profile{}, fmt.Errorf("create profile: %w", err)
	}
	return out, nil
}

func (c *Client) ListProfiles(ctx context.Context) ([]Profile, error) {
	var out []Profile
	if err := c.http.DoJSON(ctx, http.MethodGet, "/profiles", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}
