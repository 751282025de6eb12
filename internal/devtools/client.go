package devtools

import (
	"context"
	"net/http"

	"github.com/chromegate/chromegate/internal/errorwrapper"
	"github.com/mafredri/cdp/devtool"
	"github.com/mafredri/cdp/rpcc"
	"github.com/rs/zerolog"
)

// writeBufferSize is a larger default buffer size (1 MB) for the websocket
// connection.
const writeBufferSize = 1048576

// Target is a debuggable page or worker advertised by the browser's
// debugging HTTP endpoint.
type Target = devtool.Target

// Version describes the browser build behind a debugging endpoint.
type Version = devtool.Version

// Client talks to a browser debugging endpoint, either directly or through
// a fronting reverse proxy, using the endpoint's HTTP metadata routes and
// its WebSocket debugger URL.
type Client struct {
	devtools *devtool.DevTools
	baseURL  string
	logger   zerolog.Logger
}

// NewClient creates a client for the debugging endpoint at baseURL. The
// provided http.Client supplies the transport and timeout configuration for
// all metadata requests.
func NewClient(baseURL string, httpClient *http.Client, logger zerolog.Logger) *Client {
	return &Client{
		devtools: devtool.New(baseURL, devtool.WithClient(httpClient)),
		baseURL:  baseURL,
		logger:   logger.With().Str("component", "DevToolsClient").Logger(),
	}
}

// BaseURL returns the endpoint base URL this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Version fetches the browser version metadata from the endpoint.
func (c *Client) Version(ctx context.Context) (*Version, error) {
	version, err := c.devtools.Version(ctx)
	if err != nil {
		return nil, errorwrapper.NewNetworkError(c.baseURL+"/json/version", "failed to fetch version metadata", err)
	}
	return version, nil
}

// ListTargets fetches the debuggable targets advertised by the endpoint.
// The returned slice preserves the order the endpoint reported.
func (c *Client) ListTargets(ctx context.Context) ([]*Target, error) {
	targets, err := c.devtools.List(ctx)
	if err != nil {
		return nil, errorwrapper.NewNetworkError(c.baseURL+"/json/list", "failed to list targets", err)
	}
	return targets, nil
}

// ProbeConnection verifies the endpoint end to end: it fetches the version
// metadata, dials the advertised WebSocket debugger URL, and closes the
// connection immediately. No protocol command is ever sent, so the probe
// cannot disturb the browser.
func (c *Client) ProbeConnection(ctx context.Context) error {
	version, err := c.Version(ctx)
	if err != nil {
		return err
	}
	if version.WebSocketDebuggerURL == "" {
		return errorwrapper.NewError("endpoint '%s' advertised no WebSocket debugger URL", c.baseURL)
	}

	conn, err := rpcc.DialContext(ctx, version.WebSocketDebuggerURL, rpcc.WithWriteBufferSize(writeBufferSize))
	if err != nil {
		return errorwrapper.NewNetworkError(version.WebSocketDebuggerURL, "failed to dial debugger WebSocket", err)
	}

	c.logger.Debug().
		Str("browser", version.Browser).
		Str("websocket_url", version.WebSocketDebuggerURL).
		Msg("Debugger WebSocket reachable")

	return conn.Close()
}
