package themesync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hat-forum/backend/internal/models"
)

// APIClient implements PreferencesAPI against the forum's HTTP surface.
type APIClient struct {
	baseURL    string
	token      string // session JWT, sent as a bearer token
	httpClient *http.Client
}

// NewAPIClient creates a client for the preferences routes under baseURL
// (e.g. "http://localhost:8080/api/v1").
func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: http.DefaultClient,
	}
}

// FetchPreferences reads the caller's full preferences record.
func (c *APIClient) FetchPreferences(ctx context.Context) (*models.UserPreferences, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/preferences", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("preferences fetch returned status %d", resp.StatusCode)
	}

	var prefs models.UserPreferences
	if err := json.NewDecoder(resp.Body).Decode(&prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// SavePreferences writes the full preferences record back.
func (c *APIClient) SavePreferences(ctx context.Context, prefs *models.UserPreferences) error {
	body, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/preferences", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("preferences save returned status %d", resp.StatusCode)
	}
	return nil
}
