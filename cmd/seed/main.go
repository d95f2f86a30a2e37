// Package main provides a CLI for generating sample legacy district data,
// either to inspect what the demo migrates or to feed other tooling.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	seedcmd "github.com/edusync/edusync/internal/cmd/seed"
	platformcmd "github.com/edusync/edusync/internal/platform/cmd"
)

func main() {
	cfg, err := seedcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[SEED] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceSeed, func(ctx context.Context) error {
		return seedcmd.Run(ctx, cfg, os.Stdout)
	})
	if err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}
