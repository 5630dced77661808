// Package main is the obsmap driver: it opens a browser on the target
// observations site, attaches the full-height map enhancement session to
// the live page, and serves the settings bridge for the popup.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fieldnote/obsmap/pkg/bridge"
	"github.com/fieldnote/obsmap/pkg/browser"
	"github.com/fieldnote/obsmap/pkg/config"
	"github.com/fieldnote/obsmap/pkg/dom"
	"github.com/fieldnote/obsmap/pkg/enhance"
	"github.com/fieldnote/obsmap/pkg/logging"
	"github.com/fieldnote/obsmap/pkg/maps"
	"github.com/fieldnote/obsmap/pkg/schedule"
)

const version = "0.1.0"

// cliConfig holds command line overrides.
type cliConfig struct {
	ConfigPath  string
	URL         string
	Headless    bool
	ShowVersion bool
}

func parseFlags() cliConfig {
	var c cliConfig
	flag.StringVar(&c.ConfigPath, "config", "", "config file path (default ~/.obsmap/config.yaml)")
	flag.StringVar(&c.URL, "url", "", "page to open (default: the configured site)")
	flag.BoolVar(&c.Headless, "headless", false, "run the browser headless")
	flag.BoolVar(&c.ShowVersion, "version", false, "print version and exit")
	flag.Parse()
	return c
}

func main() {
	cli := parseFlags()

	if cli.ShowVersion {
		fmt.Printf("obsmap v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	if err := run(ctx, cli); err != nil {
		log.Fatalf("obsmap: %v", err)
	}
}

func run(ctx context.Context, cli cliConfig) error {
	logger, err := logging.NewLogger("driver")
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging unavailable: %v\n", err)
	}
	defer logger.Close()

	cfg, err := config.Load(cli.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	prefs, err := config.NewFilePrefs("")
	if err != nil {
		return fmt.Errorf("opening preference store: %w", err)
	}

	session, err := browser.Launch(browser.Options{Headless: cli.Headless}, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	target := cli.URL
	if target == "" {
		target = cfg.Site.BaseURL + cfg.Site.ListingPaths[0]
	}
	if err := session.Navigate(target); err != nil {
		return err
	}

	loop := schedule.NewLoop()
	page := session.Page()
	doc := dom.NewPageDocument(page, loop, logger)
	frames := dom.NewPageFrames(page, loop, logger)
	strategies := maps.LeafletStrategies(page, maps.LeafletOptions{
		MapSelector: "#" + cfg.Watch.MapID,
	}, logger)

	controller, err := enhance.NewController(enhance.Options{
		Config:     cfg,
		Doc:        doc,
		Loop:       loop,
		Clock:      schedule.NewLoopClock(loop),
		Frames:     frames,
		Strategies: strategies,
		Prefs:      prefs,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("building session: %w", err)
	}

	if err := controller.Start(); err != nil {
		return fmt.Errorf("starting session: %w", err)
	}

	b := bridge.New(logger.SessionID(), controller, logger)
	server := bridge.NewServer(cfg.Bridge.ListenAddr, b, logger)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			logger.Errorf("bridge server failed: %v", err)
		}
	}()

	fmt.Printf("obsmap session %s attached to %s\n", logger.SessionID(), target)
	fmt.Printf("bridge listening on %s\n", cfg.Bridge.ListenAddr)

	loop.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), browser.DefaultTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("bridge shutdown: %v", err)
	}
	return nil
}
