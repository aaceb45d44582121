// Package client holds the browser-side counterpart of the notes API: an
// HTTP client plus the optimistic sync controller that keeps the in-memory
// note list responsive while reconciling with the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Note is the client-side note shape. ID may be a local placeholder until
// the server confirms a creation.
type Note struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content"`
	Tags      []string        `json:"tags"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Patch is a partial note update. Nil fields are omitted from the request.
type Patch struct {
	Title   *string         `json:"title,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
	Tags    *[]string       `json:"tags,omitempty"`
}

// merge folds a newer patch into p, the newer fields winning.
func (p Patch) merge(next Patch) Patch {
	if next.Title != nil {
		p.Title = next.Title
	}
	if next.Content != nil {
		p.Content = next.Content
	}
	if next.Tags != nil {
		p.Tags = next.Tags
	}
	return p
}

type CreateInput struct {
	Title   string          `json:"title"`
	Content json.RawMessage `json:"content,omitempty"`
	Tags    []string        `json:"tags,omitempty"`
}

// API is the server surface the sync controller reconciles against.
type API interface {
	ListNotes(ctx context.Context) ([]Note, error)
	CreateNote(ctx context.Context, input CreateInput) (Note, error)
	UpdateNote(ctx context.Context, id string, patch Patch) (Note, error)
	DeleteNote(ctx context.Context, id string) error
}

// HTTPClient talks to the notes REST API with bearer-token auth.
type HTTPClient struct {
	BaseURL string
	Token   string
	client  *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		Token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("notes api error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("notes api error (%d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}

func (c *HTTPClient) ListNotes(ctx context.Context) ([]Note, error) {
	var notes []Note
	if err := c.do(ctx, http.MethodGet, "/api/notes", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *HTTPClient) CreateNote(ctx context.Context, input CreateInput) (Note, error) {
	var note Note
	if err := c.do(ctx, http.MethodPost, "/api/notes", input, &note); err != nil {
		return Note{}, err
	}
	return note, nil
}

func (c *HTTPClient) UpdateNote(ctx context.Context, id string, patch Patch) (Note, error) {
	var note Note
	if err := c.do(ctx, http.MethodPatch, "/api/notes/"+id, patch, &note); err != nil {
		return Note{}, err
	}
	return note, nil
}

func (c *HTTPClient) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+id, nil, nil)
}
