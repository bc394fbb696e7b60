// cmd/server is the check-in portal's HTTP server. It wires together
// all layers and starts the HTTP server, or runs one of the maintenance
// subcommands.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/Shivanand-hulikatti/event-checkin/internal/clock"
	"github.com/Shivanand-hulikatti/event-checkin/internal/config"
	"github.com/Shivanand-hulikatti/event-checkin/internal/database"
	"github.com/Shivanand-hulikatti/event-checkin/internal/handler"
	"github.com/Shivanand-hulikatti/event-checkin/internal/i18n"
	"github.com/Shivanand-hulikatti/event-checkin/internal/report"
	"github.com/Shivanand-hulikatti/event-checkin/internal/repository"
	"github.com/Shivanand-hulikatti/event-checkin/internal/repository/memory"
	"github.com/Shivanand-hulikatti/event-checkin/internal/seed"
	"github.com/Shivanand-hulikatti/event-checkin/internal/service"
	"github.com/Shivanand-hulikatti/event-checkin/internal/timing"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		configPath string
		seedFile   string
		reset      bool
	)
	flagSet := pflag.NewFlagSet("server", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "YAML config file (default: $CHECKIN_CONFIG)")
	flagSet.StringVar(&seedFile, "file", "", "seed: JSONC fixture file (default: embedded demo data)")
	flagSet.BoolVarP(&reset, "reset", "d", false, "seed: delete all data before seeding")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	command := "serve"
	if rest := flagSet.Args(); len(rest) > 0 {
		command = rest[0]
		if len(rest) > 1 {
			return fmt.Errorf("unexpected argument: %s", rest[1])
		}
	}
	if reset && command != "seed" {
		return errors.New("--reset only applies to the seed command")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)
	if seedFile != "" {
		cfg.Seed.File = seedFile
	}

	ctx := context.Background()
	switch command {
	case "serve":
		return serve(ctx, cfg, logger)
	case "migrate":
		if cfg.Database.Driver != config.DriverPostgres {
			return errors.New("migrate requires the postgres driver")
		}
		return database.RunMigrations(cfg.Database.DSN(), logger)
	case "seed":
		return runSeed(ctx, cfg, logger, reset)
	default:
		return fmt.Errorf("unknown command %q (want serve, migrate or seed)", command)
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Event check-in portal server.

Usage:
  server [flags] [serve]     run the HTTP API (default)
  server [flags] migrate     apply database migrations
  server [flags] seed        load demo fixtures (--reset wipes data first)

Flags:
%s`, flagSet.FlagUsages())
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// stores is the repository layer for the configured driver.
type stores struct {
	identities interface {
		service.IdentityStore
		seed.IdentityWriter
	}
	events interface {
		service.EventStore
		seed.EventWriter
	}
	participants interface {
		service.ParticipantStore
		seed.ParticipantWriter
	}
	submissions service.SubmissionStore
	reset       func(context.Context) error
	close       func()
}

func openStores(ctx context.Context, cfg *config.Config, c clock.Clock, logger *slog.Logger, migrate bool) (*stores, error) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("using in-memory store; data is lost on exit")
		store := memory.New(c.Now)
		return &stores{
			identities:   store.Identities(),
			events:       store.Events(),
			participants: store.Participants(),
			submissions:  store.Submissions(),
			reset:        store.Reset,
			close:        func() {},
		}, nil
	}

	dsn := cfg.Database.DSN()
	pool, err := database.NewPool(ctx, dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	logger.Info("connected to postgres")
	if migrate {
		if err := database.RunMigrations(dsn, logger); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &stores{
		identities:   repository.NewIdentityRepository(pool),
		events:       repository.NewEventRepository(pool),
		participants: repository.NewParticipantRepository(pool),
		submissions:  repository.NewSubmissionRepository(pool),
		reset:        func(ctx context.Context) error { return repository.Reset(ctx, pool) },
		close:        pool.Close,
	}, nil
}

func loadFixtures(cfg *config.Config) (*seed.Fixtures, error) {
	if cfg.Seed.File != "" {
		return seed.ReadFile(cfg.Seed.File)
	}
	return seed.Default()
}

func applySeed(ctx context.Context, cfg *config.Config, st *stores, c clock.Clock, logger *slog.Logger) error {
	fixtures, err := loadFixtures(cfg)
	if err != nil {
		return err
	}
	return seed.NewSeeder(st.identities, st.events, st.participants, c, 0, logger).Apply(ctx, fixtures)
}

func runSeed(ctx context.Context, cfg *config.Config, logger *slog.Logger, reset bool) error {
	if cfg.Database.Driver == config.DriverMemory {
		return errors.New("seed requires the postgres driver; the memory driver seeds itself on serve")
	}
	c := clock.Real()
	st, err := openStores(ctx, cfg, c, logger, true)
	if err != nil {
		return err
	}
	defer st.close()

	if reset {
		if err := st.reset(ctx); err != nil {
			return err
		}
		logger.Info("all data deleted")
	}
	return applySeed(ctx, cfg, st, c, logger)
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	c := clock.Real()

	// ── 1. Open the store ─────────────────────────────────────────────────
	st, err := openStores(ctx, cfg, c, logger, cfg.Database.MigrateOnStart)
	if err != nil {
		return err
	}
	defer st.close()
	if cfg.Database.Driver == config.DriverMemory {
		if err := applySeed(ctx, cfg, st, c, logger); err != nil {
			return err
		}
	}

	// ── 2. Wire up layers ────────────────────────────────────────────────
	loc, err := cfg.Report.Location()
	if err != nil {
		return err
	}
	projector := timing.NewProjector(c)
	eventSvc := service.NewEventService(st.events, projector, c, logger)
	h := handler.New(handler.Services{
		Auth: service.NewAuthService(st.identities, st.events, projector, c,
			cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, logger),
		Events:       eventSvc,
		Verification: service.NewVerificationService(st.participants, st.events, c, logger),
		Participants: service.NewParticipantService(st.participants, eventSvc, projector),
		Submissions: service.NewSubmissionService(st.submissions, st.participants,
			report.NewExporter(loc), c, logger),
	}, i18n.NewTranslator("en", logger), logger, cfg.Auth.AllowEmailHeader)

	if cfg.Auth.AllowEmailHeader {
		logger.Warn("x-auth-email identity header is enabled; callers are trusted without a credential")
	}

	// ── 3. Build the router ───────────────────────────────────────────────
	router := handler.NewRouter(h, handler.RouterConfig{
		CORSOrigins: cfg.Server.CORSOrigins,
		WebDir:      cfg.Server.WebDir,
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", "http://localhost:"+cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Block until SIGINT, SIGTERM or a listener failure.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
