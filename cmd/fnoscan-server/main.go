package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bobmcallan/fnoscan/internal/app"
	"github.com/bobmcallan/fnoscan/internal/common"
	"github.com/bobmcallan/fnoscan/internal/server"
)

// configPaths collects repeated -config flags; later files override earlier ones.
type configPaths []string

func (c *configPaths) String() string { return strings.Join(*c, ",") }

func (c *configPaths) Set(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("config path must not be empty")
	}
	*c = append(*c, v)
	return nil
}

type options struct {
	configs     configPaths
	port        int
	once        bool
	showVersion bool
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("fnoscan-server", flag.ContinueOnError)
	fs.Var(&opts.configs, "config", "config file (repeatable)")
	fs.IntVar(&opts.port, "port", 0, "override server port")
	fs.BoolVar(&opts.once, "once", false, "run one refresh cycle and exit")
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.port < 0 || opts.port > 65535 {
		return nil, fmt.Errorf("invalid port %d", opts.port)
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "fnoscan-server: %v\n", err)
		}
		os.Exit(2)
	}

	common.LoadVersionFromFile()
	if opts.showVersion {
		fmt.Println("fnoscan-server", common.GetFullVersion())
		return
	}

	config, err := common.LoadConfig(app.ResolveConfigPaths(opts.configs)...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if opts.port > 0 {
		config.Server.Port = opts.port
	}

	a, err := app.NewAppWithConfig(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	if opts.once {
		os.Exit(runOnce(a))
	}

	common.PrintBanner(a.Config, a.Logger)

	a.StartHub()
	a.WarmCache(10 * time.Second)
	a.StartRefresh()
	if err := a.StartHousekeeping(); err != nil {
		a.Logger.Error().Err(err).Msg("Housekeeping disabled")
	}

	srv := server.NewServer(a)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	a.Logger.Info().
		Str("url", fmt.Sprintf("http://localhost:%d/api/stocks", a.Config.Server.Port)).
		Msg("Server ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	a.Logger.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	common.PrintShutdownBanner(a.Logger)
	a.Close()
}

// runOnce executes a single refresh cycle and returns the process exit code.
func runOnce(a *app.App) int {
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	snap, err := a.RefreshService.RunOnce(ctx)
	if err != nil {
		a.Logger.Error().Err(err).Msg("Refresh cycle failed")
		return 1
	}

	a.Logger.Info().
		Int("records", snap.Len()).
		Bool("degraded", snap.Degraded).
		Str("source", snap.Source).
		Msg("Refresh cycle complete")
	return 0
}
