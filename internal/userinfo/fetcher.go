// Package userinfo retrieves user account metadata from OCS servers.
package userinfo

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/vertextoedge/ocs-userinfo/internal/domain"
	"github.com/vertextoedge/ocs-userinfo/internal/port"
)

// OCS routes
const (
	RouteSelf   = "/ocs/v1.php/cloud/user"
	RouteSearch = "/ocs/v1.php/cloud/users/"
)

// Fetcher retrieves UserInfo records. It holds no per-call state and is
// safe for concurrent use as long as each call gets its own client.
type Fetcher struct {
	logger *zap.Logger
}

// New creates a new Fetcher
func New(logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{logger: logger}
}

// Endpoint returns the URL used to look up targetUserID.
// Servers with the self API always get the self route; the per-user route
// may be restricted there.
func Endpoint(client port.OCSClient, targetUserID string) string {
	if !client.SupportsSelfEndpoint() && targetUserID != "" {
		return client.BaseURL() + RouteSearch + targetUserID
	}
	return client.BaseURL() + RouteSelf
}

// Fetch retrieves the user info of targetUserID, or of the authenticated
// user when targetUserID is empty. Failures are returned as *domain.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, client port.OCSClient, targetUserID string) (*domain.UserInfo, error) {
	endpoint := Endpoint(client, targetUserID)

	fallbackID := targetUserID
	if fallbackID == "" {
		fallbackID = client.Credentials().Username
	}

	headers := http.Header{}
	headers.Set(port.OCSAPIHeader, port.OCSAPIHeaderValue)
	query := url.Values{"format": {"json"}}

	f.logger.Debug("fetching user info", zap.String("url", endpoint))

	resp, err := client.ExecuteGet(ctx, endpoint, headers, query)
	if err != nil {
		f.logger.Error("exception while getting user information", zap.String("url", endpoint), zap.Error(err))
		return nil, domain.NewFaultError(err)
	}
	if resp == nil {
		return nil, domain.NewFaultError(errors.New("no response"))
	}
	var body []byte
	var readErr error
	if resp.Body != nil {
		defer resp.Body.Close()
		body, readErr = io.ReadAll(resp.Body)
	}

	if resp.StatusCode != http.StatusOK {
		f.logger.Error("failed response while getting user information",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", body),
		)
		return nil, domain.NewStatusError(resp.StatusCode, string(body))
	}
	if readErr != nil {
		f.logger.Error("failed to read user information response", zap.Error(readErr))
		return nil, domain.NewFaultError(readErr)
	}

	f.logger.Debug("successful response", zap.ByteString("response", body))

	info, err := parseUserInfo(body, fallbackID, f.logger)
	if err != nil {
		f.logger.Error("failed to parse user information", zap.Error(err))
		return nil, domain.NewParseError(err)
	}
	return info, nil
}
