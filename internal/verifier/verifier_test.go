package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/chromegate/chromegate/internal/config"
	"github.com/chromegate/chromegate/internal/errorwrapper"
	"github.com/chromegate/chromegate/internal/testutils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSettings(proxy, browser *testutils.FakeBrowser) config.Settings {
	s := config.NewDefaultSettings()
	if proxy != nil {
		s.ProxyHost = proxy.Host()
		s.ProxyPort = proxy.Port()
	}
	if browser != nil {
		s.ChromeHost = browser.Host()
		s.ChromePort = browser.Port()
	}
	return s
}

// closedEndpoint returns the address of an endpoint that refuses connections.
func closedEndpoint(t *testing.T) (string, int) {
	t.Helper()
	fb := testutils.NewFakeBrowser(t)
	host, port := fb.Host(), fb.Port()
	fb.Server.Close()
	return host, port
}

func newVerifier(t *testing.T, settings config.Settings, logger zerolog.Logger) *Verifier {
	t.Helper()
	v, err := New(settings, logger)
	require.NoError(t, err)
	return v
}

func TestVerifier_Run_EnumeratesThroughProxyByDefault(t *testing.T) {
	proxy := testutils.NewFakeBrowser(t, testutils.TargetFixture{
		ID:   "B517B3DA9EF02F0D8A4E2E6BBBE9AAA1",
		Type: "page",
		URL:  "https://www.example.com/",
	})
	browser := testutils.NewFakeBrowser(t)

	v := newVerifier(t, newTestSettings(proxy, browser), zerolog.Nop())
	require.NoError(t, v.Run(context.Background()))

	assert.Equal(t, 1, proxy.HealthHits())
	assert.Equal(t, 1, proxy.ListHits())
	assert.Equal(t, 0, browser.ListHits())
	assert.Equal(t, 1, browser.VersionHits())
	assert.Equal(t, 1, browser.WebSocketHits())
}

func TestVerifier_Run_DirectModeBypassesProxyForEnumeration(t *testing.T) {
	proxy := testutils.NewFakeBrowser(t)
	browser := testutils.NewFakeBrowser(t, testutils.TargetFixture{
		ID:   "B517B3DA9EF02F0D8A4E2E6BBBE9AAA1",
		Type: "page",
		URL:  "https://www.example.com/",
	})

	settings := newTestSettings(proxy, browser)
	settings.UseDirect = true

	v := newVerifier(t, settings, zerolog.Nop())
	require.NoError(t, v.Run(context.Background()))

	// The health probe still goes through the proxy; enumeration does not.
	assert.Equal(t, 1, proxy.HealthHits())
	assert.Equal(t, 0, proxy.ListHits())
	assert.Equal(t, 0, proxy.VersionHits())
	assert.Equal(t, 1, browser.ListHits())
}

func TestVerifier_Run_ProxyDownNeverGates(t *testing.T) {
	proxyHost, proxyPort := closedEndpoint(t)
	browser := testutils.NewFakeBrowser(t)

	settings := newTestSettings(nil, browser)
	settings.ProxyHost = proxyHost
	settings.ProxyPort = proxyPort

	v := newVerifier(t, settings, zerolog.Nop())
	require.NoError(t, v.Run(context.Background()))

	assert.Equal(t, 1, browser.WebSocketHits())
}

func TestVerifier_Run_ProxyUnhealthyStatusNeverGates(t *testing.T) {
	proxy := testutils.NewFakeBrowser(t)
	proxy.SetHealthStatus(http.StatusServiceUnavailable)
	browser := testutils.NewFakeBrowser(t)

	v := newVerifier(t, newTestSettings(proxy, browser), zerolog.Nop())
	require.NoError(t, v.Run(context.Background()))

	assert.Equal(t, 1, proxy.HealthHits())
	assert.Equal(t, 1, proxy.ListHits())
}

func TestVerifier_Run_DirectProbeFailureSkipsEnumeration(t *testing.T) {
	proxy := testutils.NewFakeBrowser(t)
	browserHost, browserPort := closedEndpoint(t)

	settings := newTestSettings(proxy, nil)
	settings.ChromeHost = browserHost
	settings.ChromePort = browserPort

	v := newVerifier(t, settings, zerolog.Nop())
	err := v.Run(context.Background())
	require.Error(t, err)

	var coded errorwrapper.HasExitCode
	require.True(t, errors.As(err, &coded))
	assert.Equal(t, errorwrapper.ExitFailure, coded.ExitCode())

	var hinted errorwrapper.HasHint
	require.True(t, errors.As(err, &hinted))
	assert.Contains(t, hinted.Hint(), "chromegatectl chrome start")

	// The health probe ran, but enumeration was never attempted.
	assert.Equal(t, 1, proxy.HealthHits())
	assert.Equal(t, 0, proxy.ListHits())
}

func TestVerifier_Run_EnumerationFailureStillSucceeds(t *testing.T) {
	proxy := testutils.NewFakeBrowser(t)
	proxy.SetListStatus(http.StatusBadGateway)
	browser := testutils.NewFakeBrowser(t)

	v := newVerifier(t, newTestSettings(proxy, browser), zerolog.Nop())
	require.NoError(t, v.Run(context.Background()))

	assert.Equal(t, 1, proxy.ListHits())
}

func TestVerifier_Run_RequestOrderIsSequential(t *testing.T) {
	fb := testutils.NewFakeBrowser(t, testutils.TargetFixture{
		ID:   "B517B3DA9EF02F0D8A4E2E6BBBE9AAA1",
		Type: "page",
		URL:  "https://www.example.com/",
	})

	// The same endpoint plays both proxy and browser so a single request log
	// captures the whole sequence.
	v := newVerifier(t, newTestSettings(fb, fb), zerolog.Nop())
	require.NoError(t, v.Run(context.Background()))

	requests := fb.Requests()
	require.Len(t, requests, 4)
	assert.Equal(t, "/health", requests[0])
	assert.Equal(t, "/json/version", requests[1])
	assert.True(t, strings.HasPrefix(requests[2], "/devtools/"), "expected a debugger connection, got %s", requests[2])
	assert.Equal(t, "/json/list", requests[3])
}

func TestVerifier_CheckProxyHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		proxy := testutils.NewFakeBrowser(t)
		browser := testutils.NewFakeBrowser(t)

		v := newVerifier(t, newTestSettings(proxy, browser), zerolog.Nop())
		result := v.CheckProxyHealth(context.Background())

		assert.True(t, result.Healthy)
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.NoError(t, result.Err)
	})

	t.Run("unexpected status", func(t *testing.T) {
		proxy := testutils.NewFakeBrowser(t)
		proxy.SetHealthStatus(http.StatusServiceUnavailable)
		browser := testutils.NewFakeBrowser(t)

		v := newVerifier(t, newTestSettings(proxy, browser), zerolog.Nop())
		result := v.CheckProxyHealth(context.Background())

		assert.False(t, result.Healthy)
		assert.Equal(t, http.StatusServiceUnavailable, result.StatusCode)

		var httpErr *errorwrapper.HTTPError
		require.True(t, errors.As(result.Err, &httpErr))
		assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
	})

	t.Run("unreachable", func(t *testing.T) {
		proxyHost, proxyPort := closedEndpoint(t)
		browser := testutils.NewFakeBrowser(t)

		settings := newTestSettings(nil, browser)
		settings.ProxyHost = proxyHost
		settings.ProxyPort = proxyPort

		v := newVerifier(t, settings, zerolog.Nop())
		result := v.CheckProxyHealth(context.Background())

		assert.False(t, result.Healthy)
		assert.Zero(t, result.StatusCode)
		assert.Error(t, result.Err)
	})
}

func TestVerifier_ProbeDirect_Success(t *testing.T) {
	browser := testutils.NewFakeBrowser(t)
	proxy := testutils.NewFakeBrowser(t)

	v := newVerifier(t, newTestSettings(proxy, browser), zerolog.Nop())
	require.NoError(t, v.ProbeDirect(context.Background()))
	assert.Equal(t, 1, browser.WebSocketHits())
}

func TestVerifier_EnumerateTargets_LogsEveryTargetInOrder(t *testing.T) {
	browser := testutils.NewFakeBrowser(t,
		testutils.TargetFixture{
			ID:                   "B517B3DA9EF02F0D8A4E2E6BBBE9AAA1",
			Type:                 "page",
			URL:                  "https://www.example.com/",
			Title:                "Example Domain",
			WebSocketDebuggerURL: "ws://127.0.0.1:9223/devtools/page/AAA1",
		},
		testutils.TargetFixture{
			ID:   "C9AE71A1F3BE21F5C614C2B54D6EBBB2",
			Type: "service_worker",
			URL:  "https://www.example.com/sw.js",
		},
	)

	settings := newTestSettings(nil, browser)
	settings.UseDirect = true

	var buf bytes.Buffer
	v := newVerifier(t, settings, zerolog.New(&buf))

	targets := v.EnumerateTargets(context.Background())
	require.Len(t, targets, 2)

	var logged []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["message"] == "Debugging target" {
			logged = append(logged, entry)
		}
	}
	require.Len(t, logged, 2)

	assert.EqualValues(t, 1, logged[0]["index"])
	assert.Equal(t, "B517B3DA9EF02F0D8A4E2E6BBBE9AAA1", logged[0]["id"])
	assert.Equal(t, "page", logged[0]["type"])
	assert.Equal(t, "Example Domain", logged[0]["title"])
	assert.Equal(t, "ws://127.0.0.1:9223/devtools/page/AAA1", logged[0]["websocket_url"])

	// Fields the endpoint omitted are rendered as the literal "N/A".
	assert.EqualValues(t, 2, logged[1]["index"])
	assert.Equal(t, "C9AE71A1F3BE21F5C614C2B54D6EBBB2", logged[1]["id"])
	assert.Equal(t, "N/A", logged[1]["title"])
	assert.Equal(t, "N/A", logged[1]["websocket_url"])
}

func TestVerifier_EnumerateTargets_EmptyList(t *testing.T) {
	browser := testutils.NewFakeBrowser(t)

	settings := newTestSettings(nil, browser)
	settings.UseDirect = true

	v := newVerifier(t, settings, zerolog.Nop())
	targets := v.EnumerateTargets(context.Background())
	assert.Empty(t, targets)
	assert.Equal(t, 1, browser.ListHits())
}

func TestVerifier_EnumerateTargets_FailureYieldsNoTargets(t *testing.T) {
	browser := testutils.NewFakeBrowser(t)
	browser.SetListStatus(http.StatusInternalServerError)

	settings := newTestSettings(nil, browser)
	settings.UseDirect = true

	v := newVerifier(t, settings, zerolog.Nop())
	assert.Empty(t, v.EnumerateTargets(context.Background()))
}

func TestOrNA(t *testing.T) {
	assert.Equal(t, "N/A", orNA(""))
	assert.Equal(t, "Example Domain", orNA("Example Domain"))
}
