// Remedy suggestion API server.
//
// Loads the repertory reference data, starts the scheduled reloads and
// serves the suggestion pipeline over HTTP with graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/joho/godotenv"

	"github.com/clinicore/remedy-api/config"
	"github.com/clinicore/remedy-api/data"
	"github.com/clinicore/remedy-api/engine"
	"github.com/clinicore/remedy-api/handlers"
	"github.com/clinicore/remedy-api/health"
	"github.com/clinicore/remedy-api/interfaces"
	"github.com/clinicore/remedy-api/logging"
	"github.com/clinicore/remedy-api/narrative"
	"github.com/clinicore/remedy-api/records"
	"github.com/clinicore/remedy-api/repertory"
	"github.com/clinicore/remedy-api/scheduler"
	"github.com/clinicore/remedy-api/server"
	"github.com/clinicore/remedy-api/validation"
)

// Compile-time check that the parser satisfies the scheduler's contract.
var _ interfaces.RepertoryParser = (*repertory.Parser)(nil)

func main() {
	// A missing .env file is fine in production, the environment is set
	// by the process manager there.
	if err := godotenv.Load(); err != nil {
		logging.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLoggerWithRetention("logs", cfg.LogRetentionWeeks)

	rules, err := loadRules(cfg)
	if err != nil {
		logging.Error("Failed to load engine ruleset", "error", err)
		os.Exit(1)
	}

	dataContainer := data.NewDataContainer()
	dataContainer.SetServerStartTime(time.Now())

	parser := repertory.NewParser(cfg.DataDir)

	sched := scheduler.NewScheduler(dataContainer, parser)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start reference data scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	repo, closeRepo := openCaseRepository(cfg)
	if closeRepo != nil {
		defer closeRepo()
	}

	var history engine.HistoryProvider
	if repo != nil {
		history = repo
	}

	deps := handlers.Deps{
		Store:     dataContainer,
		Engine:    engine.New(rules, history),
		Validator: validation.NewRequestValidator(),
		Records:   repo,
		Narrator:  narrative.NewTemplateNarrator(),
		Checker:   health.NewHealthChecker(dataContainer),
	}

	srv := server.NewServer(cfg, deps)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	for sig := range quit {
		// SIGHUP is the reference data invalidation signal, everything
		// else shuts the server down.
		if sig == syscall.SIGHUP {
			logging.Info("Received SIGHUP, reloading reference data")
			go func() {
				if err := sched.Reload(); err != nil {
					logging.Error("Signalled reload failed", "error", err)
				}
			}()
			continue
		}
		break
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown failed", "error", err)
		os.Exit(1)
	}
}

// loadRules returns the default ruleset, optionally overlaid with the
// tuning file named by RULES_FILE.
func loadRules(cfg *config.Config) (*engine.Ruleset, error) {
	if cfg.RulesFile == "" {
		return engine.DefaultRuleset(), nil
	}

	rules, err := engine.LoadRuleset(cfg.RulesFile)
	if err != nil {
		return nil, err
	}

	logging.Info("Loaded engine ruleset overlay", "file", cfg.RulesFile)
	return rules, nil
}

// openCaseRepository picks Postgres when DATABASE_URL is set and falls back
// to the in-memory store otherwise, so the API stays usable without a
// database.
func openCaseRepository(cfg *config.Config) (interfaces.CaseRepository, func()) {
	if cfg.DatabaseURL == "" {
		logging.Info("DATABASE_URL not set, using in-memory case records")
		return records.NewMemoryRepository(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := records.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Error("Failed to connect to case records database, falling back to in-memory store", "error", err)
		return records.NewMemoryRepository(), nil
	}

	logging.Info("Connected to case records database")
	return repo, func() {
		if err := repo.Close(); err != nil {
			logging.Error("Failed to close case records database", "error", err)
		}
	}
}
