// Command starfield runs the planet and asteroid economy simulation: it reads
// the field size from the console, generates the field, runs the tick loop,
// and announces the winner.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/starfield/internal/api"
	"github.com/talgya/starfield/internal/config"
	"github.com/talgya/starfield/internal/corp"
	"github.com/talgya/starfield/internal/engine"
	"github.com/talgya/starfield/internal/entropy"
	"github.com/talgya/starfield/internal/persistence"
	"github.com/talgya/starfield/internal/world"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("starfield", flag.ContinueOnError)
	fs.SetOutput(stdout)
	configPath := fs.String("config", os.Getenv("STARFIELD_CONFIG"), "YAML configuration file")
	planets := fs.Int("planets", 0, "number of planets (prompted when 0)")
	asteroids := fs.Int("asteroids", 0, "number of asteroids (prompted when 0)")
	routes := fs.Int("routes", 0, "number of routes (prompted when 0)")
	steps := fs.Int("steps", -1, "ticks to simulate (-1 = configured value)")
	seed := fs.Int64("seed", 0, "random seed (0 = configured value)")
	dbPath := fs.String("db", "", "archive DSN (empty = configured value)")
	quiet := fs.Bool("quiet", false, "skip the per-tick field listing")
	serve := fs.Bool("serve", false, "serve the run archive over HTTP instead of running")
	if err := fs.Parse(args); err != nil {
		return err
	}

	config.LoadDotEnv()
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *steps >= 0 {
		cfg.Steps = *steps
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *dbPath != "" {
		cfg.Archive.DSN = *dbPath
	}

	logger := slog.New(slog.NewTextHandler(stdout, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	if *serve {
		return serveArchive(cfg)
	}

	// ── Field size ────────────────────────────────────────────────────
	p := newPrompter(stdin, stdout)
	counts := []struct {
		label string
		flag  int
		dst   *int
	}{
		{"planets", *planets, &cfg.Planets},
		{"asteroids", *asteroids, &cfg.Asteroids},
		{"routes", *routes, &cfg.Routes},
	}
	for _, c := range counts {
		if c.flag != 0 {
			*c.dst = c.flag
		}
		if *c.dst != 0 {
			continue
		}
		n, err := p.askInt(c.label)
		if err != nil {
			return err
		}
		*c.dst = n
	}
	fmt.Fprintln(stdout)

	if err := cfg.Validate(); err != nil {
		return err
	}
	layout, _ := world.ParseLayout(cfg.Layout)

	// ── Field ─────────────────────────────────────────────────────────
	sim, err := engine.NewSimulation(engine.FieldConfig{
		Planets:   cfg.Planets,
		Asteroids: cfg.Asteroids,
		Routes:    cfg.Routes,
		Seed:      cfg.Seed,
		Layout:    layout,
		Strict:    cfg.Strict,
	})
	if err != nil {
		return err
	}
	if err := sim.GenerateField(); err != nil {
		return err
	}
	for i, cc := range cfg.Corporations {
		kind, _ := corp.ParseKind(cc.Kind)
		sim.AddCorporation(corp.New(cc.Name, kind, entropy.Derive(cfg.Seed, 600+int64(i))))
	}

	fmt.Fprint(stdout, sim.Describe())

	// ── Archive ───────────────────────────────────────────────────────
	var archive *persistence.Archive
	if cfg.Archive.DSN != "" {
		archive, err = persistence.Open(cfg.Archive.Driver, cfg.Archive.DSN)
		if err != nil {
			return err
		}
		defer archive.Close()
		slog.Info("archive opened", "driver", cfg.Archive.Driver, "run", sim.RunID)

		err = archive.BeginRun(persistence.RunRecord{
			ID:        sim.RunID.String(),
			Planets:   cfg.Planets,
			Asteroids: cfg.Asteroids,
			Routes:    cfg.Routes,
			Steps:     cfg.Steps,
			Seed:      cfg.Seed,
			Layout:    cfg.Layout,
		})
		if err != nil {
			return err
		}
	}

	// ── Run ───────────────────────────────────────────────────────────
	var archiveErr error
	res := sim.Run(cfg.Steps, func(r engine.Report) {
		if !*quiet {
			printStep(stdout, r, sim.Describe())
		}
		if archive == nil || archiveErr != nil {
			return
		}
		if err := archive.SaveReport(r); err != nil {
			archiveErr = err
			slog.Error("archiving stopped", "tick", r.Tick, "error", err)
		}
	})

	fmt.Fprintln(stdout, res.String())

	slog.Info("run summary",
		"run", sim.RunID,
		"ticks", humanize.Comma(int64(sim.LastTick)),
		"purchases", humanize.Comma(int64(sim.Stats.Purchases)),
		"rejected_purchases", humanize.Comma(int64(sim.Stats.Rejections)),
		"upgrades", humanize.Comma(int64(sim.Stats.Upgrades)),
		"corporation_effects", humanize.Comma(int64(sim.Stats.CorporationEffects)),
	)

	if archive != nil {
		if archiveErr != nil {
			return fmt.Errorf("archive: %w", archiveErr)
		}
		if err := archive.SaveResult(sim.RunID.String(), res); err != nil {
			return err
		}
	}
	return nil
}

// printStep writes one step: what happened during the tick, then the field.
func printStep(w io.Writer, r engine.Report, field string) {
	fmt.Fprintf(w, "Step %d:\n-------------------\n", r.Tick)
	for _, e := range r.Events {
		fmt.Fprintln(w, e.Description)
	}
	fmt.Fprintf(w, "-------------------\n%s-------------------\n", field)
}

// serveArchive exposes the configured archive read-only until SIGINT or
// SIGTERM.
func serveArchive(cfg config.Config) error {
	if cfg.Archive.DSN == "" {
		return errors.New("serve: no archive configured (set -db or STARFIELD_DB)")
	}
	archive, err := persistence.Open(cfg.Archive.Driver, cfg.Archive.DSN)
	if err != nil {
		return err
	}
	defer archive.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &api.Server{
		Store:   archive,
		Addr:    cfg.Serve.Addr,
		Origins: cfg.Serve.Origins,
		Limiter: api.NewRateLimiter(cfg.Serve.RequestsPerSecond, cfg.Serve.Burst),
	}
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
