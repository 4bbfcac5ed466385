package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rileyhilliard/systrix/internal/cli"
)

// Version info set via ldflags at build time:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01" ./cmd/systrix
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetVersionInfo(version, commit, date)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
