package config

import (
	"fmt"
	"time"

	"github.com/chromegate/chromegate/internal/errorwrapper"
	"github.com/mstoykov/envconfig"
)

// Settings holds the immutable run configuration for the connectivity
// verifier. It is constructed once from the environment plus defaults and
// never mutated afterwards.
type Settings struct {
	ProxyHost  string `envconfig:"PROXY_HOST" default:"localhost" validate:"required"`
	ProxyPort  int    `envconfig:"PROXY_PORT" default:"80" validate:"gte=1,lte=65535"`
	TargetURL  string `envconfig:"TARGET_URL" default:"https://www.example.com" validate:"omitempty,url"`
	OutputFile string `envconfig:"OUTPUT_FILE" default:"screenshot.png"`
	ChromePort int    `envconfig:"CHROME_PORT" default:"9223" validate:"gte=1,lte=65535"`
	UseDirect  bool   `envconfig:"USE_DIRECT" default:"false"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info" validate:"omitempty,loglevel"`

	// Fixed values, not environment-sourced. The debugging endpoint always
	// lives on the local host; the timeout bounds every network operation.
	ChromeHost string        `ignored:"true" validate:"required"`
	Timeout    time.Duration `ignored:"true" validate:"gt=0"`
}

// NewDefaultSettings returns Settings with every documented default applied.
func NewDefaultSettings() Settings {
	return Settings{
		ProxyHost:  DefaultProxyHost,
		ProxyPort:  DefaultProxyPort,
		TargetURL:  DefaultTargetURL,
		OutputFile: DefaultOutputFile,
		ChromePort: DefaultChromePort,
		UseDirect:  false,
		LogLevel:   DefaultLogLevel,
		ChromeHost: DefaultChromeHost,
		Timeout:    DefaultRequestTimeout,
	}
}

// FromEnv constructs Settings from the process environment. Each variable
// falls back to its default independently; malformed values are reported as
// startup errors.
func FromEnv() (Settings, error) {
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return Settings{}, errorwrapper.WrapError(err, "failed to read environment configuration")
	}
	s.ChromeHost = DefaultChromeHost
	s.Timeout = DefaultRequestTimeout

	if err := ValidateSettings(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ProxyBaseURL returns the HTTP base URL of the fronting proxy.
func (s Settings) ProxyBaseURL() string {
	return fmt.Sprintf("http://%s:%d", s.ProxyHost, s.ProxyPort)
}

// DirectBaseURL returns the HTTP base URL of the browser's debugging endpoint.
func (s Settings) DirectBaseURL() string {
	return fmt.Sprintf("http://%s:%d", s.ChromeHost, s.ChromePort)
}

// HealthURL returns the proxy health endpoint probed at startup.
func (s Settings) HealthURL() string {
	return s.ProxyBaseURL() + DefaultProxyHealthPath
}

// EnumerationBaseURL returns the endpoint used for target enumeration: the
// proxy by default, the direct endpoint when UseDirect is set.
func (s Settings) EnumerationBaseURL() string {
	if s.UseDirect {
		return s.DirectBaseURL()
	}
	return s.ProxyBaseURL()
}
