package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Z-testacc/ActiLeap/internal/domain"
)

// Insight is one structured recommendation returned by the analysis
// service.
type Insight struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// Client talks to the workout analysis service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client with a bounded timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Generate sanitizes the logs and requests insights. Users with fewer
// than MinLogsForInsights logs get an empty result without any call
// upstream.
func (c *Client) Generate(ctx context.Context, logs []domain.WorkoutLog) ([]Insight, error) {
	if len(logs) < MinLogsForInsights {
		return []Insight{}, nil
	}

	body, err := json.Marshal(map[string]any{
		"workouts": Summarize(logs),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/insights", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("insights service error: %s", data)
	}

	var payload struct {
		Insights []Insight `json:"insights"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	// Drop entries missing required fields rather than surfacing
	// half-filled cards.
	valid := make([]Insight, 0, len(payload.Insights))
	for _, insight := range payload.Insights {
		if insight.Title == "" || insight.Description == "" {
			continue
		}
		valid = append(valid, insight)
	}
	return valid, nil
}
