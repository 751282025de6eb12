package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearVerifierEnv unsets every variable the verifier reads so defaults apply,
// restoring the original values when the test finishes.
func clearVerifierEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		EnvProxyHost, EnvProxyPort, EnvTargetURL,
		EnvOutputFile, EnvChromePort, EnvUseDirect, EnvLogLevel,
	}
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			key, value := key, value
			t.Cleanup(func() { _ = os.Setenv(key, value) })
			_ = os.Unsetenv(key)
		}
	}
}

func TestNewDefaultSettings(t *testing.T) {
	s := NewDefaultSettings()

	assert.Equal(t, "localhost", s.ProxyHost)
	assert.Equal(t, 80, s.ProxyPort)
	assert.Equal(t, "https://www.example.com", s.TargetURL)
	assert.Equal(t, "screenshot.png", s.OutputFile)
	assert.Equal(t, 9223, s.ChromePort)
	assert.Equal(t, "localhost", s.ChromeHost)
	assert.False(t, s.UseDirect)
	assert.Equal(t, 5*time.Second, s.Timeout)
}

func TestFromEnv_Defaults(t *testing.T) {
	clearVerifierEnv(t)

	s, err := FromEnv()

	require.NoError(t, err)
	assert.Equal(t, NewDefaultSettings(), s)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearVerifierEnv(t)
	t.Setenv(EnvProxyHost, "proxy.internal")
	t.Setenv(EnvProxyPort, "8080")
	t.Setenv(EnvChromePort, "9333")
	t.Setenv(EnvUseDirect, "true")
	t.Setenv(EnvTargetURL, "https://example.org/page")
	t.Setenv(EnvOutputFile, "capture.png")

	s, err := FromEnv()

	require.NoError(t, err)
	assert.Equal(t, "proxy.internal", s.ProxyHost)
	assert.Equal(t, 8080, s.ProxyPort)
	assert.Equal(t, 9333, s.ChromePort)
	assert.True(t, s.UseDirect)
	assert.Equal(t, "https://example.org/page", s.TargetURL)
	assert.Equal(t, "capture.png", s.OutputFile)

	// Fixed values are never environment-sourced
	assert.Equal(t, "localhost", s.ChromeHost)
	assert.Equal(t, 5*time.Second, s.Timeout)
}

func TestFromEnv_EachVariableFallsBackIndependently(t *testing.T) {
	clearVerifierEnv(t)
	t.Setenv(EnvProxyPort, "8080")

	s, err := FromEnv()

	require.NoError(t, err)
	assert.Equal(t, 8080, s.ProxyPort)
	assert.Equal(t, "localhost", s.ProxyHost)
	assert.Equal(t, 9223, s.ChromePort)
}

func TestFromEnv_MalformedValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "proxy port not a number", key: EnvProxyPort, value: "eighty"},
		{name: "chrome port not a number", key: EnvChromePort, value: "debug"},
		{name: "use direct not a bool", key: EnvUseDirect, value: "banana"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearVerifierEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()

			assert.Error(t, err)
		})
	}
}

func TestFromEnv_ValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "proxy port out of range", key: EnvProxyPort, value: "70000"},
		{name: "unknown log level", key: EnvLogLevel, value: "chatty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearVerifierEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()

			require.Error(t, err)
			assert.Contains(t, err.Error(), "Validation failed")
		})
	}
}

func TestSettings_URLs(t *testing.T) {
	s := NewDefaultSettings()
	s.ProxyHost = "gateway"
	s.ProxyPort = 8080
	s.ChromePort = 9333

	assert.Equal(t, "http://gateway:8080", s.ProxyBaseURL())
	assert.Equal(t, "http://localhost:9333", s.DirectBaseURL())
	assert.Equal(t, "http://gateway:8080/health", s.HealthURL())
}

func TestSettings_EnumerationBaseURL(t *testing.T) {
	s := NewDefaultSettings()

	assert.Equal(t, s.ProxyBaseURL(), s.EnumerationBaseURL())

	s.UseDirect = true
	assert.Equal(t, s.DirectBaseURL(), s.EnumerationBaseURL())
}
