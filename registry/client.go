package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openstudydata/ddiwalk/record"
)

// Client is a Registry backed by a CKAN-style JSON action API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a Client for the given catalog base URL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type actionResponse struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *actionError    `json:"error,omitempty"`
}

type actionError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

// Show fetches the record stored under id, or ErrNotFound.
func (c *Client) Show(ctx context.Context, id string) (*record.Record, error) {
	var rec record.Record
	err := c.call(ctx, "package_show", map[string]string{"id": id}, &rec)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create stores a new record and returns its identifier.
func (c *Client) Create(ctx context.Context, rec *record.Record) (string, error) {
	var created record.Record
	if err := c.call(ctx, "package_create", rec, &created); err != nil {
		return "", err
	}
	return createdID(&created, rec), nil
}

// Update replaces the record stored under rec's identifier.
func (c *Client) Update(ctx context.Context, rec *record.Record) (string, error) {
	var updated record.Record
	if err := c.call(ctx, "package_update", rec, &updated); err != nil {
		return "", err
	}
	return createdID(&updated, rec), nil
}

func createdID(got, sent *record.Record) string {
	if got.ID != "" {
		return got.ID
	}
	return sent.Name
}

func (c *Client) call(ctx context.Context, action string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", action, err)
	}

	url := c.BaseURL + "/api/3/action/" + action
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", c.APIKey)
	}

	slog.Debug("catalog call", "action", action, "url", url)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", action, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	var ar actionResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return fmt.Errorf("%s: decoding response (status %d): %w", action, resp.StatusCode, err)
	}
	if !ar.Success {
		if ar.Error != nil && ar.Error.Type == "Not Found Error" {
			return ErrNotFound
		}
		msg := "unknown error"
		if ar.Error != nil {
			msg = ar.Error.Message
		}
		return fmt.Errorf("%s failed (status %d): %s", action, resp.StatusCode, msg)
	}

	if out != nil && len(ar.Result) > 0 {
		if err := json.Unmarshal(ar.Result, out); err != nil {
			return fmt.Errorf("%s: decoding result: %w", action, err)
		}
	}
	return nil
}
