// Package main provisions the demo runtime environment and launches the
// demo server, mirroring the one-command setup script newcomers expect.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	bootstrapcmd "github.com/edusync/edusync/internal/cmd/bootstrap"
	platformcmd "github.com/edusync/edusync/internal/platform/cmd"
)

func main() {
	cfg, err := bootstrapcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[BOOTSTRAP] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceBootstrap, func(ctx context.Context) error {
		return bootstrapcmd.Run(ctx, cfg, os.Stdout)
	})
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
}
