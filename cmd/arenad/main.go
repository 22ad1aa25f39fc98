// Package main starts the arena gRPC service.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	arenadcmd "github.com/louisbranch/fusionarena/internal/cmd/arenad"
	"github.com/louisbranch/fusionarena/internal/platform/config"
)

func main() {
	cfg, err := arenadcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := arenadcmd.Run(ctx, cfg); err != nil {
		config.Exitf("failed to serve: %v", err)
	}
}
