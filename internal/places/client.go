package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/wanderlist/wanderlist/internal/cache"
)

const (
	defaultTimeout         = 10 * time.Second
	defaultDetailsCacheTTL = 15 * time.Minute
	detailsCacheMaxEntries = 4096
)

// Place is a point of interest returned by the upstream places provider.
type Place struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
	Address    string   `json:"address,omitempty"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Rating     *float64 `json:"rating,omitempty"`
	PriceLevel *int     `json:"price_level,omitempty"`
	PhotoURL   string   `json:"photo_url,omitempty"`
}

// SearchQuery describes a nearby search against the provider.
type SearchQuery struct {
	Category  string
	Latitude  float64
	Longitude float64
	RadiusM   int
	Limit     int
}

// Client talks to the external places provider over HTTP. Place details are
// cached briefly so repeated lookups during a session do not re-hit the
// provider.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
	details    *cache.TTLCache
}

// NewClient creates a places provider client.
func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:  logger,
		details: cache.New(detailsCacheMaxEntries, defaultDetailsCacheTTL, nil),
	}
}

// SetHTTPClient overrides the HTTP client, for tests.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// SearchNearby returns places near a location, optionally filtered by
// category.
func (c *Client) SearchNearby(ctx context.Context, q SearchQuery) ([]Place, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(q.Latitude, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(q.Longitude, 'f', -1, 64))
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.RadiusM > 0 {
		params.Set("radius", strconv.Itoa(q.RadiusM))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var result struct {
		Places []Place `json:"places"`
	}
	if err := c.get(ctx, "/v1/search", params, &result); err != nil {
		return nil, fmt.Errorf("places search failed: %w", err)
	}
	return result.Places, nil
}

// GetDetails returns details for one place, served from cache when fresh.
func (c *Client) GetDetails(ctx context.Context, placeID string) (*Place, error) {
	if placeID == "" {
		return nil, fmt.Errorf("place id is required")
	}
	if cached, ok := c.details.Get(placeID); ok {
		if place, ok := cached.(*Place); ok {
			return place, nil
		}
	}

	var place Place
	if err := c.get(ctx, "/v1/places/"+url.PathEscape(placeID), nil, &place); err != nil {
		return nil, fmt.Errorf("place details lookup failed: %w", err)
	}
	c.details.Set(placeID, &place)
	return &place, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if c.logger != nil {
			c.logger.Warn("places_provider_error",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", body),
			)
		}
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}
