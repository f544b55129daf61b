package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"welcomecraft/internal/adapter/site_http"
	"welcomecraft/internal/domain"
	"welcomecraft/internal/infra/httpclient"
)

// Client calls the site generation HTTP API on behalf of one user.
type Client struct {
	baseURL string
	userID  string
	worldID string
	http    *http.Client
}

func NewClient(baseURL, userID, worldID string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  userID,
		worldID: worldID,
		http:    httpclient.NewPooledClient(timeout),
	}
}

func (c *Client) Candidates(ctx context.Context, prompt string) (*domain.AllCandidates, error) {
	var out domain.AllCandidates
	if err := c.do(ctx, http.MethodPost, "/v1/sites/candidates", site_http.CandidatesRequest{Prompt: prompt}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Generate(ctx context.Context, req site_http.GenerateSiteRequest) (*site_http.GenerateSiteResponse, error) {
	req.Async = false
	var out site_http.GenerateSiteResponse
	if err := c.do(ctx, http.MethodPost, "/v1/sites/generate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Enqueue(ctx context.Context, req site_http.GenerateSiteRequest) (*site_http.JobResponse, error) {
	req.Async = true
	var out site_http.JobResponse
	if err := c.do(ctx, http.MethodPost, "/v1/sites/generate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Job(ctx context.Context, id string) (*site_http.JobResponse, error) {
	var out site_http.JobResponse
	if err := c.do(ctx, http.MethodGet, "/v1/sites/jobs/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WaitJob polls until the job leaves the new and processing states.
func (c *Client) WaitJob(ctx context.Context, id string, interval time.Duration) (*site_http.JobResponse, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		job, err := c.Job(ctx, id)
		if err != nil {
			return nil, err
		}
		if job.Status == domain.JobStatusCompleted || job.Status == domain.JobStatusFailed {
			return job, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(site_http.HeaderUserID, c.userID)
	if c.worldID != "" {
		req.Header.Set(site_http.HeaderWorldID, c.worldID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
