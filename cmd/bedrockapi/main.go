// Bedrock API - model provider abstraction and streaming response engine
// Entry point: flag handling plus the serve command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codevakure/bedrock-api-code/internal/infra/config"
	"github.com/codevakure/bedrock-api-code/internal/infra/sqlite"
	"github.com/codevakure/bedrock-api-code/internal/server"
	"github.com/codevakure/bedrock-api-code/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("bedrockapi", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")
	configFile := fs.String("config", "", "Path to YAML config file")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}

	if *showHelp {
		printHelp(out)
		return 0
	}

	if fs.Arg(0) == "serve" {
		if err := serve(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "bedrockapi: %v\n", err)
			return 1
		}
		return 0
	}

	// Default: print version
	fmt.Fprintln(out, version.String()) //nolint:errcheck
	return 0
}

// serve wires config, storage and the HTTP server, then blocks until
// SIGINT/SIGTERM and shuts down gracefully.
func serve(configFile string) error {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return err
	}

	// pkg/auth reads the signing secret from the environment.
	if os.Getenv("JWT_SECRET") == "" {
		os.Setenv("JWT_SECRET", cfg.JWTSecret) //nolint:errcheck
	}

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	if err := sqlite.MigrateUp(db); err != nil {
		db.Close() //nolint:errcheck
		return err
	}

	httpCfg := server.DefaultConfig()
	httpCfg.Addr = cfg.HTTPAddr
	srv := server.NewServer(db, cfg, httpCfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func printHelp(out io.Writer) {
	helpText := `Bedrock API - model provider abstraction and streaming response engine

Usage:
  bedrockapi [options] [command]

Options:
  --version    Show version information
  --help       Show this help message
  --config     Path to YAML config file

Commands:
  serve        Start the HTTP server

Examples:
  bedrockapi --version
  bedrockapi serve
  bedrockapi --config config.yaml serve`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
