// Package main runs a battle scenario from the command line.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	arenacmd "github.com/louisbranch/fusionarena/internal/cmd/arena"
	"github.com/louisbranch/fusionarena/internal/platform/config"
)

func main() {
	cfg, err := arenacmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := arenacmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("Error: %v", err)
	}
}
