// Package main starts the browser-facing demo service.
//
// This process owns the migration session, the target store, and the HTTP
// surface the demo pages and workflow API hang off.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	servercmd "github.com/edusync/edusync/internal/cmd/server"
	platformcmd "github.com/edusync/edusync/internal/platform/cmd"
)

func main() {
	cfg, err := servercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[SERVER] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceServer, func(ctx context.Context) error {
		return servercmd.Run(ctx, cfg)
	})
	if err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
