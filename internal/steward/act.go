package steward

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RejectedError is a command the server refused with a 4xx status. The
// steward treats these as ordinary misses (not enough resources, a hex
// still cooling down) rather than failures.
type RejectedError struct {
	Path   string
	Status int
	Body   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s rejected (%d): %s", e.Path, e.Status, e.Body)
}

// IsRejected reports whether err is a refused command.
func IsRejected(err error) bool {
	var rej *RejectedError
	return errors.As(err, &rej)
}

// Actor plays commands through the API.
type Actor struct {
	BaseURL    string
	AdminKey   string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL. adminKey may
// be empty when the server runs without one.
func NewActor(baseURL, adminKey string) *Actor {
	return &Actor{
		BaseURL:  baseURL,
		AdminKey: adminKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Act sends one action and returns the raw JSON result.
func (a *Actor) Act(action Action) (json.RawMessage, error) {
	body, err := json.Marshal(action.Body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", action.Kind, err)
	}

	req, err := http.NewRequest(http.MethodPost, a.BaseURL+action.Path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.AdminKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.AdminKey)
	}

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", action.Path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return json.RawMessage(respBody), nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusUnauthorized:
		return nil, &RejectedError{Path: action.Path, Status: resp.StatusCode, Body: string(bytes.TrimSpace(respBody))}
	default:
		return nil, fmt.Errorf("%s failed (%d): %s", action.Kind, resp.StatusCode, string(respBody))
	}
}
