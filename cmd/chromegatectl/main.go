package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chromegate/chromegate/internal/errorwrapper"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	c := newRootCommand()
	if err := c.cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "chromegatectl: %v\n", err)

		var hinted errorwrapper.HasHint
		if errors.As(err, &hinted) {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hinted.Hint())
		}

		exitCode := int(errorwrapper.ExitFailure)
		var coded errorwrapper.HasExitCode
		if errors.As(err, &coded) {
			exitCode = int(coded.ExitCode())
		}
		os.Exit(exitCode)
	}
}
