// Package main implements the tywrap bridge CLI entry point.
// file: cmd/bridge/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/tywrap/bridge/internal/bridge"
	"github.com/tywrap/bridge/internal/config"
	"github.com/tywrap/bridge/internal/logging"
)

// Version information (populated at build time).
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	logging.InitLogging(logging.LevelInfo, os.Stderr)
	logger := logging.GetLogger("bridge")

	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		printVersion()
		return
	}

	printStartupBanner(logger)

	settings, err := config.Load(os.Getenv("TYWRAP_CONFIG_FILE"))
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	b := bridge.New(settings, logger)

	if err := b.Run(context.Background(), os.Stdin, os.Stdout, os.Stderr); err != nil {
		logger.Error("bridge loop terminated with error", "error", err)
		os.Exit(1)
	}
}

// printStartupBanner writes a short, colorized identification line to
// stderr. Never to stdout, which is reserved entirely for the framed
// response stream.
func printStartupBanner(logger logging.Logger) {
	header := color.New(color.FgMagenta, color.Bold).SprintFunc()
	info := color.New(color.FgWhite).SprintFunc()

	fmt.Fprintln(os.Stderr, header("tywrap bridge"), info(fmt.Sprintf("%s (%s)", version, buildDate)))
	fmt.Fprintln(os.Stderr, info(fmt.Sprintf("go %s on %s/%s, pid %d", runtime.Version(), runtime.GOOS, runtime.GOARCH, os.Getpid())))
	logger.Info("bridge starting", "version", version, "pid", os.Getpid())
}

func printVersion() {
	fmt.Printf("tywrap bridge\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Built:      %s\n", buildDate)
	fmt.Printf("Go version: %s\n", runtime.Version())
	fmt.Printf("OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
