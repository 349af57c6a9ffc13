package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vanguardcontact/data-server/internal/entity"
)

// Client looks actors up in the external actor/identity directory. The
// directory is read-only from this service's point of view.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    baseURL,
		Token:      token,
	}
}

func (c *Client) GetActor(ctx context.Context, actorID int64) (*entity.Actor, error) {
	url := fmt.Sprintf("%s/actors/%d", c.BaseURL, actorID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building actor request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling actor directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("actor %d not found in directory", actorID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("actor directory returned status %d", resp.StatusCode)
	}

	var actor entity.Actor
	if err := json.NewDecoder(resp.Body).Decode(&actor); err != nil {
		return nil, fmt.Errorf("decoding actor response: %w", err)
	}
	return &actor, nil
}
