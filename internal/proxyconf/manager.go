package proxyconf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/chromegate/chromegate/internal/config"
	"github.com/chromegate/chromegate/internal/errorwrapper"
	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Manager renders, compares and installs the nginx site that fronts the
// browser's debugging endpoint.
type Manager struct {
	config config.ProxyConfig
	logger zerolog.Logger
	dmp    *diffmatchpatch.DiffMatchPatch

	// runCommand executes the nginx binary; swapped out in tests.
	runCommand func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewManager creates a proxy site manager for the given configuration.
func NewManager(cfg config.ProxyConfig, logger zerolog.Logger) *Manager {
	return &Manager{
		config:     cfg,
		logger:     logger.With().Str("component", "ProxySiteManager").Logger(),
		dmp:        diffmatchpatch.New(),
		runCommand: runCommand,
	}
}

// Render produces the nginx site for the configured ports.
func (m *Manager) Render() (string, error) {
	return renderSite(m.config)
}

// Diff compares the rendered site against the installed file and reports
// whether they differ. A missing installed file is treated as empty.
func (m *Manager) Diff() (string, bool, error) {
	rendered, err := m.Render()
	if err != nil {
		return "", false, err
	}

	current, err := m.readInstalled()
	if err != nil {
		return "", false, err
	}

	if current == rendered {
		return "", false, nil
	}
	return m.renderLineDiff(current, rendered), true, nil
}

// Install writes the rendered site to the configured path, validates the
// nginx configuration and reloads nginx. An unchanged site is left alone.
// A site that fails validation is rolled back to its previous content.
func (m *Manager) Install(ctx context.Context) error {
	rendered, err := m.Render()
	if err != nil {
		return err
	}

	current, err := m.readInstalled()
	if err != nil {
		return err
	}
	if current == rendered {
		m.logger.Info().Str("path", m.config.SitePath).Msg("Proxy site already up to date")
		return nil
	}

	m.logger.Info().
		Str("path", m.config.SitePath).
		Msg("Installing proxy site:\n" + m.renderLineDiff(current, rendered))

	hadPrevious := current != ""
	if err := m.writeSite(rendered); err != nil {
		return err
	}

	if err := m.validate(ctx); err != nil {
		m.rollback(current, hadPrevious)
		return err
	}

	return m.reload(ctx)
}

func (m *Manager) readInstalled() (string, error) {
	content, err := os.ReadFile(m.config.SitePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errorwrapper.WrapError(err, fmt.Sprintf("failed to read installed site '%s'", m.config.SitePath))
	}
	return string(content), nil
}

func (m *Manager) writeSite(content string) error {
	if dir := filepath.Dir(m.config.SitePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errorwrapper.WrapError(err, fmt.Sprintf("failed to create site directory '%s'", dir))
		}
	}
	if err := os.WriteFile(m.config.SitePath, []byte(content), 0644); err != nil {
		return errorwrapper.WrapError(err, fmt.Sprintf("failed to write site '%s'", m.config.SitePath))
	}
	return nil
}

func (m *Manager) rollback(previous string, hadPrevious bool) {
	if !hadPrevious {
		if err := os.Remove(m.config.SitePath); err != nil {
			m.logger.Warn().Err(err).Str("path", m.config.SitePath).Msg("Failed to remove rejected site")
		}
		return
	}
	if err := os.WriteFile(m.config.SitePath, []byte(previous), 0644); err != nil {
		m.logger.Warn().Err(err).Str("path", m.config.SitePath).Msg("Failed to restore previous site")
	}
}

func (m *Manager) validate(ctx context.Context) error {
	output, err := m.runCommand(ctx, m.config.NginxBinary, "-t")
	if err != nil {
		return errorwrapper.WrapError(err, fmt.Sprintf("nginx configuration validation failed: %s", strings.TrimSpace(string(output))))
	}
	m.logger.Debug().Msg("nginx configuration validated")
	return nil
}

func (m *Manager) reload(ctx context.Context) error {
	output, err := m.runCommand(ctx, m.config.NginxBinary, "-s", "reload")
	if err != nil {
		return errorwrapper.WrapError(err, fmt.Sprintf("nginx reload failed: %s", strings.TrimSpace(string(output))))
	}
	m.logger.Info().Msg("nginx reloaded")
	return nil
}

// renderLineDiff produces a line-oriented diff between the installed and the
// rendered site, prefixing removed lines with '-' and added lines with '+'.
func (m *Manager) renderLineDiff(current, rendered string) string {
	c1, c2, lines := m.dmp.DiffLinesToChars(current, rendered)
	diffs := m.dmp.DiffCharsToLines(m.dmp.DiffMain(c1, c2, false), lines)

	var b strings.Builder
	for _, diff := range diffs {
		prefix := " "
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		text := strings.TrimRight(diff.Text, "\n")
		if text == "" && diff.Text != "" {
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			b.WriteString(prefix)
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
