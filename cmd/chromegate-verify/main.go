package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/chromegate/chromegate/internal/config"
	"github.com/chromegate/chromegate/internal/errorwrapper"
	"github.com/chromegate/chromegate/internal/logger"
	"github.com/chromegate/chromegate/internal/verifier"
	"github.com/rs/zerolog"
)

const usage = `
chromegate-verify checks connectivity to a headless browser behind a
reverse proxy: it probes the proxy health endpoint, verifies the
debugging endpoint directly, then enumerates the debuggable targets.

Usage: chromegate-verify [flags]

Flags:
  --direct     enumerate targets from the debugging endpoint directly
               instead of through the proxy
  -h, --help   show this help message and exit

Environment variables:
  PROXY_HOST    proxy host (default "localhost")
  PROXY_PORT    proxy port (default 80)
  CHROME_PORT   debugging endpoint port, always on localhost (default 9223)
  USE_DIRECT    same as --direct when set to "true" (default "false")
  TARGET_URL    reserved for capture workflows (default "https://www.example.com")
  OUTPUT_FILE   reserved for capture workflows (default "screenshot.png")
  LOG_LEVEL     trace, debug, info, warn, error, fatal or panic (default "info")

Unrecognized arguments are ignored.
`

type options struct {
	showHelp bool
	direct   bool
}

// parseArgs scans the raw arguments for the flags the verifier understands.
// Anything unrecognized is deliberately ignored.
func parseArgs(args []string) options {
	var opts options
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			opts.showHelp = true
		case "--direct":
			opts.direct = true
		}
	}
	return opts
}

func main() {
	opts := parseArgs(os.Args[1:])
	if opts.showHelp {
		fmt.Println(strings.TrimSpace(usage))
		os.Exit(int(errorwrapper.ExitSuccess))
	}

	os.Exit(run(opts))
}

func run(opts options) (exitCode int) {
	// Bootstrap logger so a failure before configuration still gets
	// reported; replaced once settings are loaded.
	zLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	defer func() {
		if r := recover(); r != nil {
			zLogger.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Unexpected error")
			exitCode = int(errorwrapper.ExitFailure)
		}
	}()

	settings, err := config.FromEnv()
	if err != nil {
		zLogger.Error().Err(err).Msg("Invalid configuration")
		return int(errorwrapper.ExitFailure)
	}
	if opts.direct {
		settings.UseDirect = true
	}

	logCfg := config.NewDefaultLogConfig()
	logCfg.LogLevel = settings.LogLevel
	zLogger, err = logger.New(logCfg)
	if err != nil {
		log.Printf("[FATAL] chromegate-verify: could not initialize logger: %v", err)
		return int(errorwrapper.ExitFailure)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		zLogger.Info().Str("signal", sig.String()).Msg("Received interrupt signal, exiting")
		os.Exit(int(errorwrapper.ExitSuccess))
	}()

	zLogger.Info().
		Str("proxy_url", settings.ProxyBaseURL()).
		Str("direct_url", settings.DirectBaseURL()).
		Bool("use_direct", settings.UseDirect).
		Msg("Starting connectivity verification")

	v, err := verifier.New(settings, zLogger)
	if err != nil {
		return fail(zLogger, err)
	}

	if err := v.Run(ctx); err != nil {
		return fail(zLogger, err)
	}

	zLogger.Info().Msg("Connectivity verification finished")
	return int(errorwrapper.ExitSuccess)
}

// fail logs the verification error together with any remediation hint it
// carries and maps it to a process exit code.
func fail(zLogger zerolog.Logger, err error) int {
	event := zLogger.Error().Err(err)

	var hinted errorwrapper.HasHint
	if errors.As(err, &hinted) {
		event = event.Str("hint", hinted.Hint())
	}
	event.Msg("Connectivity verification failed")

	var coded errorwrapper.HasExitCode
	if errors.As(err, &coded) {
		return int(coded.ExitCode())
	}
	return int(errorwrapper.ExitFailure)
}
