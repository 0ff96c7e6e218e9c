package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dantte-lp/usteerd/internal/server"
)

// errAPIStatus is wrapped with the response status and body on any
// non-2xx response from usteerd's control plane.
var errAPIStatus = errors.New("unexpected status")

// apiClient is a thin wrapper over usteerd's control-plane HTTP API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string, httpClient *http.Client) *apiClient {
	return &apiClient{baseURL: baseURL, http: httpClient}
}

func (c *apiClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%w: %d %s", errAPIStatus, resp.StatusCode, apiErr.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *apiClient) ListNodes(ctx context.Context) ([]server.NodeDTO, error) {
	var out []server.NodeDTO
	err := c.getJSON(ctx, "/v1/nodes", &out)
	return out, err
}

func (c *apiClient) GetNode(ctx context.Context, name string) (server.NodeDTO, error) {
	var out server.NodeDTO
	err := c.getJSON(ctx, "/v1/nodes/"+name, &out)
	return out, err
}

func (c *apiClient) ListStations(ctx context.Context) ([]server.StationDTO, error) {
	var out []server.StationDTO
	err := c.getJSON(ctx, "/v1/stations", &out)
	return out, err
}

func (c *apiClient) GetStation(ctx context.Context, mac string) (server.StationDTO, error) {
	var out server.StationDTO
	err := c.getJSON(ctx, "/v1/stations/"+mac, &out)
	return out, err
}

// WatchEvents streams NDJSON decision events from /v1/events, calling fn
// for each one until ctx is canceled or the connection closes.
func (c *apiClient) WatchEvents(ctx context.Context, fn func(eventJSON []byte) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/events", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", errAPIStatus, resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}
