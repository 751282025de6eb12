package verifier

import (
	"context"
	"net/http"

	"github.com/chromegate/chromegate/internal/chrome"
	"github.com/chromegate/chromegate/internal/config"
	"github.com/chromegate/chromegate/internal/devtools"
	"github.com/chromegate/chromegate/internal/errorwrapper"
	"github.com/chromegate/chromegate/internal/httpclient"
	"github.com/rs/zerolog"
)

// HealthResult captures the outcome of the advisory proxy health probe.
type HealthResult struct {
	Healthy    bool
	StatusCode int
	URL        string
	Err        error
}

// Verifier runs the staged connectivity checks against the fronting proxy
// and the browser's debugging endpoint.
type Verifier struct {
	settings   config.Settings
	logger     zerolog.Logger
	httpClient *httpclient.HTTPClient
	direct     *devtools.Client
	enumerator *devtools.Client
}

// New builds a verifier for the given settings. Every network operation it
// performs is bounded by the settings timeout.
func New(settings config.Settings, logger zerolog.Logger) (*Verifier, error) {
	httpClient, err := httpclient.NewHTTPClientBuilder(logger).
		WithTimeout(settings.Timeout).
		WithUserAgent("chromegate-verify").
		Build()
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to build HTTP client")
	}

	std := httpClient.StdClient()
	return &Verifier{
		settings:   settings,
		logger:     logger.With().Str("component", "Verifier").Logger(),
		httpClient: httpClient,
		direct:     devtools.NewClient(settings.DirectBaseURL(), std, logger),
		enumerator: devtools.NewClient(settings.EnumerationBaseURL(), std, logger),
	}, nil
}

// Run executes the verification sequence: advisory proxy health probe, fatal
// direct probe, then target enumeration. The stages run strictly one after
// another; a failed direct probe skips enumeration entirely.
func (v *Verifier) Run(ctx context.Context) error {
	v.CheckProxyHealth(ctx)

	if err := v.ProbeDirect(ctx); err != nil {
		return err
	}

	v.EnumerateTargets(ctx)
	return nil
}

// CheckProxyHealth probes the proxy health endpoint. The result is advisory:
// it is logged but never gates the rest of the run.
func (v *Verifier) CheckProxyHealth(ctx context.Context) HealthResult {
	url := v.settings.HealthURL()
	v.logger.Info().Str("url", url).Msg("Checking proxy health")

	ctx, cancel := context.WithTimeout(ctx, v.settings.Timeout)
	defer cancel()

	resp, err := v.httpClient.Get(ctx, url)
	if err != nil {
		v.logger.Warn().Err(err).Str("url", url).Msg("Proxy health check failed, continuing")
		return HealthResult{URL: url, Err: err}
	}

	result := HealthResult{
		URL:        url,
		StatusCode: resp.StatusCode,
		Healthy:    resp.StatusCode == http.StatusOK,
	}
	if result.Healthy {
		v.logger.Info().Int("status_code", resp.StatusCode).Msg("Proxy reports healthy")
		return result
	}

	result.Err = errorwrapper.NewHTTPErrorWithURL(resp.StatusCode, "unexpected proxy health status", url)
	v.logger.Warn().
		Int("status_code", resp.StatusCode).
		Str("url", url).
		Msg("Proxy health check returned non-OK status, continuing")
	return result
}

// ProbeDirect verifies the debugging endpoint is reachable on its fixed
// local port by opening and closing a debugger connection. Failure is fatal
// for the run: the returned error carries exit code 1 and a hint naming the
// command that starts the browser.
func (v *Verifier) ProbeDirect(ctx context.Context) error {
	v.logger.Info().Str("url", v.direct.BaseURL()).Msg("Probing debugging endpoint directly")

	ctx, cancel := context.WithTimeout(ctx, v.settings.Timeout)
	defer cancel()

	if err := v.direct.ProbeConnection(ctx); err != nil {
		err = errorwrapper.WrapError(err, "direct debugging endpoint probe failed")
		err = errorwrapper.WithHint(err, chrome.StartCommandHint())
		return errorwrapper.WithExitCodeIfNone(err, errorwrapper.ExitFailure)
	}

	v.logger.Info().Msg("Debugging endpoint reachable")
	return nil
}

// EnumerateTargets lists the debuggable targets from the selected endpoint
// and logs one entry per target in the order the endpoint returned them.
// Enumeration failure is not fatal: it is logged and yields no targets.
func (v *Verifier) EnumerateTargets(ctx context.Context) []*devtools.Target {
	v.logger.Info().
		Str("mode", v.enumerationMode()).
		Str("url", v.enumerator.BaseURL()).
		Msg("Enumerating debugging targets")

	ctx, cancel := context.WithTimeout(ctx, v.settings.Timeout)
	defer cancel()

	targets, err := v.enumerator.ListTargets(ctx)
	if err != nil {
		v.logger.Error().Err(err).Msg("Target enumeration failed")
		return nil
	}

	v.logger.Info().Int("count", len(targets)).Msg("Debugging targets enumerated")
	for i, target := range targets {
		v.logger.Info().
			Int("index", i+1).
			Str("id", target.ID).
			Str("type", string(target.Type)).
			Str("url", target.URL).
			Str("title", orNA(target.Title)).
			Str("websocket_url", orNA(target.WebSocketDebuggerURL)).
			Msg("Debugging target")
	}

	return targets
}

func (v *Verifier) enumerationMode() string {
	if v.settings.UseDirect {
		return "direct"
	}
	return "proxy"
}

// orNA substitutes the literal "N/A" for absent optional fields.
func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
