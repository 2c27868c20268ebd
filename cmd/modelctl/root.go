package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bibbank/credit-risk-service/internal/infrastructure/config"
	"github.com/bibbank/credit-risk-service/internal/infrastructure/oracle"
	"github.com/bibbank/credit-risk-service/internal/infrastructure/postgres"
	pgutil "github.com/bibbank/credit-risk-service/pkg/postgres"
)

// registry is the part of postgres.ModelStore the commands use.
type registry interface {
	Save(ctx context.Context, m *oracle.LogisticModel, activate bool) (uuid.UUID, error)
	Activate(ctx context.Context, version string) error
	List(ctx context.Context) ([]postgres.ModelRecord, error)
}

// deps are the collaborators the commands resolve lazily, replaced in tests.
type deps struct {
	loadConfig   func() (*config.Config, error)
	openRegistry func(ctx context.Context, cfg *config.Config) (registry, func(), error)
	migrate      func(dsn, dir string) (uint, error)
}

func defaultDeps() deps {
	return deps{
		loadConfig: config.Load,
		openRegistry: func(ctx context.Context, cfg *config.Config) (registry, func(), error) {
			pool, err := pgutil.NewPool(ctx, pgutil.Config{URL: cfg.Database.URL, MaxConns: 2})
			if err != nil {
				return nil, nil, err
			}
			return postgres.NewModelStore(pool), pool.Close, nil
		},
		migrate: pgutil.RunMigrations,
	}
}

// app carries state shared by subcommands.
type app struct {
	cfg  *config.Config
	deps deps
}

func newRootCmd(d deps) *cobra.Command {
	a := &app{deps: d}

	root := &cobra.Command{
		Use:   "modelctl",
		Short: "Manage credit risk scoring models",
		Long: `modelctl publishes logistic scoring model artifacts to the PostgreSQL
registry, switches the active version and mints bearer tokens for callers of
the credit risk API.

Configuration is read like creditriskd: credit-risk.yaml and CREDIT_RISK_* variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			cfg, err := a.deps.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			a.cfg = cfg
			return nil
		},
	}

	root.AddCommand(a.publishCmd())
	root.AddCommand(a.activateCmd())
	root.AddCommand(a.listCmd())
	root.AddCommand(a.migrateCmd())
	root.AddCommand(a.tokenCmd())

	return root
}

func (a *app) withRegistry(ctx context.Context, fn func(registry) error) error {
	reg, closeFn, err := a.deps.openRegistry(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("failed to open model registry: %w", err)
	}
	defer closeFn()
	return fn(reg)
}
