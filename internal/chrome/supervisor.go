package chrome

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chromegate/chromegate/internal/config"
	"github.com/chromegate/chromegate/internal/devtools"
	"github.com/chromegate/chromegate/internal/errorwrapper"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"
)

// StartCommand is the invocation that launches the managed browser. The
// verifier names it in the remediation hint when the debugging endpoint is
// unreachable.
const StartCommand = "chromegatectl chrome start"

// StartCommandHint phrases StartCommand as a remediation hint.
func StartCommandHint() string {
	return fmt.Sprintf("start the browser with '%s'", StartCommand)
}

// Status describes the observed state of the debugging endpoint and the
// browser processes carrying its port.
type Status struct {
	Running      bool
	Endpoint     string
	Browser      string
	Protocol     string
	WebSocketURL string
	PIDs         []int32
}

// Supervisor launches and tears down the headless browser backing the
// debugging endpoint.
type Supervisor struct {
	config    config.ChromeConfig
	logger    zerolog.Logger
	launcher  *launcher.Launcher
	mutex     sync.Mutex
	isRunning bool
}

// NewSupervisor creates a browser supervisor for the given configuration.
func NewSupervisor(cfg config.ChromeConfig, logger zerolog.Logger) *Supervisor {
	return &Supervisor{
		config: cfg,
		logger: logger.With().Str("component", "ChromeSupervisor").Logger(),
	}
}

// Endpoint returns the HTTP base URL of the supervised debugging endpoint.
func (s *Supervisor) Endpoint() string {
	return fmt.Sprintf("http://127.0.0.1:%d", s.config.DebugPort)
}

// Start launches the headless browser with remote debugging bound to the
// loopback interface and waits until the endpoint answers version queries.
// Starting is idempotent: an endpoint that already answers is left alone.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.isRunning {
		return nil
	}

	client := s.newDevToolsClient()
	if _, err := client.Version(ctx); err == nil {
		s.logger.Info().Str("endpoint", s.Endpoint()).Msg("Debugging endpoint already answering, nothing to start")
		return nil
	}

	bin := s.config.BinaryPath
	if bin == "" {
		found, has := launcher.LookPath()
		if !has {
			return errorwrapper.NewError("no browser binary found, set chrome.binary_path in the config")
		}
		bin = found
	}

	l := launcher.New().Bin(bin)
	if s.config.UserDataDir != "" {
		l = l.UserDataDir(s.config.UserDataDir)
	}
	l = configureLauncher(l, s.config)

	s.logger.Info().
		Str("binary", bin).
		Int("debug_port", s.config.DebugPort).
		Msg("Launching headless browser")

	controlURL, err := l.Launch()
	if err != nil {
		return errorwrapper.WrapError(err, "failed to launch browser")
	}
	s.launcher = l
	s.logger.Debug().
		Str("control_url", controlURL).
		Int("pid", l.PID()).
		Msg("Browser process launched")

	if err := s.waitUntilReady(ctx, client); err != nil {
		l.Kill()
		l.Cleanup()
		s.launcher = nil
		return err
	}

	s.isRunning = true
	s.logger.Info().Str("endpoint", s.Endpoint()).Msg("Headless browser ready")
	return nil
}

// Stop terminates the supervised browser. A browser launched by this process
// is killed through its launcher; otherwise every process carrying the
// debugging port on its command line is sent SIGTERM, escalating to SIGKILL
// after the kill timeout.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.launcher != nil {
		s.logger.Info().Int("pid", s.launcher.PID()).Msg("Stopping launched browser")
		s.launcher.Kill()
		s.launcher.Cleanup()
		s.launcher = nil
		s.isRunning = false
		return nil
	}

	procs, err := findDebugProcesses(s.config.DebugPort)
	if err != nil {
		return err
	}
	if len(procs) == 0 {
		s.logger.Info().Int("debug_port", s.config.DebugPort).Msg("No browser process found, nothing to stop")
		return nil
	}

	for _, p := range procs {
		s.terminateProcess(ctx, p)
	}
	s.isRunning = false
	return nil
}

// Status reports whether the debugging endpoint answers and which processes
// carry the debugging port on their command line.
func (s *Supervisor) Status(ctx context.Context) Status {
	status := Status{Endpoint: s.Endpoint()}

	if version, err := s.newDevToolsClient().Version(ctx); err == nil {
		status.Running = true
		status.Browser = version.Browser
		status.Protocol = version.Protocol
		status.WebSocketURL = version.WebSocketDebuggerURL
	}

	if procs, err := findDebugProcesses(s.config.DebugPort); err == nil {
		for _, p := range procs {
			status.PIDs = append(status.PIDs, p.Pid)
		}
	}

	return status
}

func (s *Supervisor) newDevToolsClient() *devtools.Client {
	httpClient := &http.Client{Timeout: 2 * time.Second}
	return devtools.NewClient(s.Endpoint(), httpClient, s.logger)
}

// waitUntilReady polls the version endpoint until the browser answers or the
// start timeout elapses.
func (s *Supervisor) waitUntilReady(ctx context.Context, client *devtools.Client) error {
	timeout := time.Duration(s.config.StartTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = config.DefaultChromeStartTimeoutSecs * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		version, err := client.Version(ctx)
		if err == nil {
			s.logger.Debug().Str("browser", version.Browser).Msg("Debugging endpoint answered")
			return nil
		}

		select {
		case <-ctx.Done():
			return errorwrapper.WrapError(ctx.Err(), fmt.Sprintf("browser did not answer on %s within %s", s.Endpoint(), timeout))
		case <-ticker.C:
		}
	}
}

func (s *Supervisor) terminateProcess(ctx context.Context, p *process.Process) {
	s.logger.Info().Int32("pid", p.Pid).Msg("Terminating browser process")
	if err := p.Terminate(); err != nil {
		s.logger.Warn().Err(err).Int32("pid", p.Pid).Msg("Failed to send SIGTERM, killing")
		_ = p.Kill()
		return
	}

	killTimeout := time.Duration(s.config.KillTimeoutSecs) * time.Second
	if killTimeout <= 0 {
		killTimeout = config.DefaultChromeKillTimeoutSecs * time.Second
	}

	deadline := time.Now().Add(killTimeout)
	for time.Now().Before(deadline) {
		if running, err := p.IsRunning(); err != nil || !running {
			s.logger.Info().Int32("pid", p.Pid).Msg("Browser process exited")
			return
		}
		select {
		case <-ctx.Done():
			s.logger.Warn().Int32("pid", p.Pid).Msg("Stop cancelled, killing immediately")
			_ = p.Kill()
			return
		case <-time.After(200 * time.Millisecond):
		}
	}

	s.logger.Warn().
		Int32("pid", p.Pid).
		Dur("kill_timeout", killTimeout).
		Msg("Browser did not exit in time, killing")
	_ = p.Kill()
}

// findDebugProcesses returns every process whose command line carries the
// given remote debugging port.
func findDebugProcesses(port int) ([]*process.Process, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to list processes")
	}

	marker := fmt.Sprintf("--remote-debugging-port=%d", port)
	var matches []*process.Process
	for _, p := range procs {
		cmdline, err := p.Cmdline()
		if err != nil || cmdline == "" {
			continue
		}
		if strings.Contains(cmdline, marker) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}
