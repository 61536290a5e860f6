package port

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// OCS request conventions shared by every OCS endpoint
const (
	OCSAPIHeader      = "OCS-APIRequest"
	OCSAPIHeaderValue = "true"
)

// Credentials identifies the principal the client authenticates as
type Credentials struct {
	Username string
}

// Response is a raw HTTP response from an OCS server.
// Body holds the underlying connection and must be closed by the caller.
type Response struct {
	StatusCode int
	Body       io.ReadCloser
}

// OCSClient defines the HTTP client abstraction used by OCS operations
type OCSClient interface {
	// BaseURL returns the server base URL without a trailing slash
	BaseURL() string

	// SupportsSelfEndpoint returns true if the server version provides /cloud/user
	SupportsSelfEndpoint() bool

	// Credentials returns the credentials of the authenticated principal
	Credentials() Credentials

	// ExecuteGet performs a GET request against the given absolute URL
	ExecuteGet(ctx context.Context, rawURL string, headers http.Header, query url.Values) (*Response, error)
}
