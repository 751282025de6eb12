package config

import "time"

// Environment variables recognized by chromegate-verify
const (
	EnvProxyHost  = "PROXY_HOST"
	EnvProxyPort  = "PROXY_PORT"
	EnvTargetURL  = "TARGET_URL"
	EnvOutputFile = "OUTPUT_FILE"
	EnvChromePort = "CHROME_PORT"
	EnvUseDirect  = "USE_DIRECT"
	EnvLogLevel   = "LOG_LEVEL"
)

// Verifier defaults
const (
	DefaultProxyHost  = "localhost"
	DefaultProxyPort  = 80
	DefaultTargetURL  = "https://www.example.com"
	DefaultOutputFile = "screenshot.png"
	DefaultChromeHost = "localhost"
	DefaultChromePort = 9223

	// DefaultRequestTimeout bounds every network operation the verifier
	// performs. It is fixed, not environment-sourced.
	DefaultRequestTimeout = 5 * time.Second
)

// Log defaults
const (
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3
)

// Chrome supervision defaults
const (
	DefaultChromeStartTimeoutSecs = 20
	DefaultChromeKillTimeoutSecs  = 5
)

// Proxy site defaults
const (
	DefaultProxyListenPort = 80
	DefaultProxyHealthPath = "/health"
	DefaultProxySitePath   = "/etc/nginx/conf.d/chromegate.conf"
	DefaultNginxBinary     = "nginx"
)
