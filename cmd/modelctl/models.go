package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bibbank/credit-risk-service/internal/infrastructure/oracle"
)

func (a *app) publishCmd() *cobra.Command {
	var activate bool

	cmd := &cobra.Command{
		Use:   "publish FILE",
		Short: "Register a model artifact from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := oracle.NewFileSource(args[0]).LoadActive(cmd.Context())
			if err != nil {
				return err
			}
			if err := m.Validate(); err != nil {
				return fmt.Errorf("invalid model artifact %s: %w", args[0], err)
			}

			return a.withRegistry(cmd.Context(), func(reg registry) error {
				id, err := reg.Save(cmd.Context(), m, activate)
				if err != nil {
					return err
				}
				state := "inactive"
				if activate {
					state = "active"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "published %s (%s) as %s\n", m.Version, id, state)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&activate, "activate", false, "make the new version the active model")
	return cmd
}

func (a *app) activateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate VERSION",
		Short: "Make a registered version the active model",
		Long: `Switch the active model. Running services pick it up on the next
ReloadModel call or POST /v1/models/reload.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRegistry(cmd.Context(), func(reg registry) error {
				if err := reg.Activate(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "activated %s\n", args[0])
				return nil
			})
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered model versions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRegistry(cmd.Context(), func(reg registry) error {
				records, err := reg.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no models registered")
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "VERSION\tACTIVE\tCREATED\tID")
				for _, r := range records {
					active := ""
					if r.Active {
						active = "*"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Version, active, r.CreatedAt.Format(time.RFC3339), r.ID)
				}
				return w.Flush()
			})
		},
	}
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			version, err := a.deps.migrate(a.cfg.Database.URL, a.cfg.Database.MigrationsDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database at migration version %d\n", version)
			return nil
		},
	}
}
