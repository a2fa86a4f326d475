package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/halvard/skald/internal/apperr"
	"github.com/halvard/skald/internal/models"
)

// Client implements Source against the indexer's REST API.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// NewClient creates an indexer client. token may be empty for unauthenticated
// indexers.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:  strings.TrimRight(baseURL, "/"),
		token: token,
		http:  &http.Client{Timeout: timeout},
	}
}

// noteDTO is the indexer wire representation of a confirmed note.
// Timestamps are epoch milliseconds.
type noteDTO struct {
	Owner       string            `json:"owner"`
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	Fields      models.PageFields `json:"fields"`
	UpdatedAt   int64             `json:"updated_at"`
	PublishedAt *int64            `json:"published_at,omitempty"`
	Confirmed   bool              `json:"confirmed"`
}

func (d *noteDTO) toModel() *models.RemoteNote {
	n := &models.RemoteNote{
		Owner:     d.Owner,
		ID:        d.ID,
		Kind:      models.PageKind(d.Kind),
		Fields:    d.Fields,
		UpdatedAt: time.UnixMilli(d.UpdatedAt).UTC(),
		Confirmed: d.Confirmed,
	}
	if d.PublishedAt != nil {
		t := time.UnixMilli(*d.PublishedAt).UTC()
		n.Fields.PublishedAt = &t
	}
	return n
}

// FetchByID returns the confirmed note with the given identifier, or nil when
// the indexer reports it does not exist.
func (c *Client) FetchByID(ctx context.Context, owner, id string) (*models.RemoteNote, error) {
	return c.fetchNote(ctx, fmt.Sprintf("%s/v1/accounts/%s/notes/%s",
		c.base, url.PathEscape(owner), url.PathEscape(id)))
}

// FetchBySlug returns the confirmed note with the given slug, or nil.
func (c *Client) FetchBySlug(ctx context.Context, owner, slug string) (*models.RemoteNote, error) {
	return c.fetchNote(ctx, fmt.Sprintf("%s/v1/accounts/%s/notes/slug/%s",
		c.base, url.PathEscape(owner), url.PathEscape(slug)))
}

func (c *Client) fetchNote(ctx context.Context, u string) (*models.RemoteNote, error) {
	body, status, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	var dto noteDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("remote: decode note: %w: %w", apperr.ErrRemoteUnavailable, err)
	}
	return dto.toModel(), nil
}

// List returns every confirmed note belonging to owner.
func (c *Client) List(ctx context.Context, owner string) ([]models.RemoteNote, error) {
	u := fmt.Sprintf("%s/v1/accounts/%s/notes", c.base, url.PathEscape(owner))
	body, status, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	var resp struct {
		Notes []noteDTO `json:"notes"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("remote: decode list: %w: %w", apperr.ErrRemoteUnavailable, err)
	}
	out := make([]models.RemoteNote, 0, len(resp.Notes))
	for i := range resp.Notes {
		out = append(out, *resp.Notes[i].toModel())
	}
	return out, nil
}

// Submit writes a note to the ledger and returns the confirmed record.
func (c *Client) Submit(ctx context.Context, owner, id string, kind models.PageKind, fields models.PageFields) (*models.RemoteNote, error) {
	req := struct {
		ID     string            `json:"id,omitempty"`
		Kind   string            `json:"kind"`
		Fields models.PageFields `json:"fields"`
	}{ID: id, Kind: string(kind), Fields: fields}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("remote: marshal submission: %w", err)
	}

	u := fmt.Sprintf("%s/v1/accounts/%s/notes", c.base, url.PathEscape(owner))
	body, status, err := c.do(ctx, http.MethodPost, u, payload)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("remote: submit: account %s: %w", owner, apperr.ErrNotFound)
	}
	var dto noteDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("remote: decode submission: %w: %w", apperr.ErrRemoteUnavailable, err)
	}
	return dto.toModel(), nil
}

// do performs the request and classifies failures: network errors and non-2xx
// statuses other than 404 wrap apperr.ErrRemoteUnavailable; 404 is passed
// through for the caller to interpret.
func (c *Client) do(ctx context.Context, method, u string, payload []byte) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("remote: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("remote: %s %s: %w: %w", method, u, apperr.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("remote: read response: %w: %w", apperr.ErrRemoteUnavailable, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("remote: %s %s: status %d: %w",
			method, u, resp.StatusCode, apperr.ErrRemoteUnavailable)
	}
	return body, resp.StatusCode, nil
}
