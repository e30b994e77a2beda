package cli

import (
	"fmt"

	"github.com/nadia/taskwise/internal/config"
	"github.com/nadia/taskwise/internal/logger"
	"github.com/nadia/taskwise/internal/store"
	"github.com/nadia/taskwise/pkg/agent"
	"github.com/nadia/taskwise/pkg/tools"
)

// app bundles the wired-up pieces commands operate on.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	store    *store.Store
	registry *tools.Registry
}

// buildApp loads configuration and opens the store and logger. The
// caller owns the returned app and must Close it.
func buildApp() (*app, error) {
	loader := config.NewLoader(cfgFile)
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}

	log, err := logger.New(logger.Config{
		Level:     level,
		File:      cfg.Logging.File,
		Console:   true,
		Pretty:    true,
		Redaction: cfg.Logging.Redaction,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	registry := tools.NewRegistry()
	if err := tools.RegisterTaskTools(registry, st.Tasks()); err != nil {
		st.Close()
		log.Close()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return &app{cfg: cfg, log: log, store: st, registry: registry}, nil
}

func (a *app) Close() {
	a.store.Close()
	a.log.Close()
}

// newSession validates the model configuration and builds the agent
// session on top of the app's store and registry.
func (a *app) newSession() (*agent.Session, error) {
	if err := config.NewValidator().Validate(a.cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return agent.NewSession(agent.Config{
		Store:         a.store,
		Registry:      a.registry,
		Model:         a.cfg.Model,
		HistoryWindow: a.cfg.Agent.HistoryWindow,
		SystemPrompt:  a.cfg.Agent.SystemPrompt,
		Logger:        a.log.GetZerolog(),
	})
}
