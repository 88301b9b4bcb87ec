package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/AgentOS/fsserver/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/fsserver/internal/infrastructure/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fsserver: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fset := flag.NewFlagSet("fsserver", flag.ContinueOnError)
	configFile := fset.String("config", os.Getenv(config.FileEnv), "Config file (.yaml, .yml or .toml)")
	port := fset.String("port", "", "Server port (overrides PORT)")
	host := fset.String("host", "", "Server host (overrides HOST)")
	logLevel := fset.String("log-level", "", "Log level: debug, info, warn, error")
	dev := fset.Bool("dev", false, "Development mode (colored console logs)")
	fset.Usage = func() {
		fmt.Fprintf(fset.Output(), "Usage: fsserver [flags] <allowed-directory> [additional-directories...]\n\n")
		fset.PrintDefaults()
	}
	if err := fset.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadWithFile(*configFile)
	if err != nil {
		return err
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *dev {
		cfg.Logging.Development = true
	}
	cfg.Sandbox.AllowedDirs = append(cfg.Sandbox.AllowedDirs, fset.Args()...)

	srv, err := server.NewServer(cfg)
	if errors.Is(err, server.ErrNoAllowedDirectories) {
		fset.Usage()
		return err
	}
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
