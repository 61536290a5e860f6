package ocs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

const statusPath = "/status.php"

// ServerStatus is the response of status.php
type ServerStatus struct {
	Installed       bool   `json:"installed"`
	Maintenance     bool   `json:"maintenance"`
	NeedsDBUpgrade  bool   `json:"needsDbUpgrade"`
	Version         string `json:"version"`
	VersionString   string `json:"versionstring"`
	Edition         string `json:"edition"`
	ProductName     string `json:"productname"`
	ExtendedSupport bool   `json:"extendedSupport"`
}

// Status queries the unauthenticated server status
func (c *Client) Status(ctx context.Context) (*ServerStatus, error) {
	resp, err := c.ExecuteGet(ctx, c.baseURL+statusPath, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var status ServerStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}

	return &status, nil
}

// DetectVersion queries status.php and records the server version
func (c *Client) DetectVersion(ctx context.Context) (Version, error) {
	status, err := c.Status(ctx)
	if err != nil {
		return Version{}, err
	}

	v, err := ParseVersion(status.Version)
	if err != nil {
		return Version{}, fmt.Errorf("failed to parse server version: %w", err)
	}

	c.SetServerVersion(v)
	c.logger.Info("detected server version",
		zap.String("version", v.String()),
		zap.String("product", status.ProductName),
		zap.Bool("self_api", v.IsSelfSupported()),
	)
	return v, nil
}
