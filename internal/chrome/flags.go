package chrome

import (
	"strconv"
	"strings"

	"github.com/chromegate/chromegate/internal/config"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// configureLauncher applies the launch flags for the supervised debugging
// browser: headless, debugging bound to the loopback interface, plus the
// hardening flags a containerized browser needs.
func configureLauncher(l *launcher.Launcher, cfg config.ChromeConfig) *launcher.Launcher {
	l = l.
		Headless(true).
		// The browser must outlive the launching process.
		Leakless(false).
		Set("remote-debugging-port", strconv.Itoa(cfg.DebugPort)).
		Set("remote-debugging-address", "127.0.0.1").
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-first-run").
		Set("disable-default-apps").
		Set("disable-sync").
		Set("mute-audio").
		Set("metrics-recording-only")

	for _, raw := range cfg.ExtraFlags {
		name, value := splitFlag(raw)
		if name == "" {
			continue
		}
		if value == "" {
			l = l.Set(flags.Flag(name))
		} else {
			l = l.Set(flags.Flag(name), value)
		}
	}

	return l
}

// splitFlag parses a configured flag entry of the form "name" or
// "name=value", tolerating a leading "--".
func splitFlag(raw string) (name, value string) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "--")
	if raw == "" {
		return "", ""
	}
	if i := strings.Index(raw, "="); i >= 0 {
		return raw[:i], raw[i+1:]
	}
	return raw, ""
}
