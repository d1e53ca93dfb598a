package main

import (
	"context"
	"os"

	"github.com/shrimpsizemoose/trekker/logger"
	"github.com/spf13/cobra"

	"attendance-tracker/internal/config"
	"attendance-tracker/internal/roster"
	"attendance-tracker/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "admin",
		Short:        "Maintenance tasks for the attendance service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.toml", "path to the TOML config file")

	root.AddCommand(newMigrateCmd(&configPath), newCreateTeacherCmd(&configPath))
	return root
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := store.Migrate(cfg.Database.DSN); err != nil {
				return err
			}
			logger.Info.Println("migrations applied")
			return nil
		},
	}
}

func newCreateTeacherCmd(configPath *string) *cobra.Command {
	var empID, name, password string

	cmd := &cobra.Command{
		Use:   "create-teacher",
		Short: "Create a teacher account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return createTeacher(cmd.Context(), cfg, empID, name, password)
		},
	}
	cmd.Flags().StringVar(&empID, "emp-id", "", "employee id used to log in")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	for _, f := range []string{"emp-id", "name", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func createTeacher(ctx context.Context, cfg config.App, empID, name, password string) error {
	if err := store.Migrate(cfg.Database.DSN); err != nil {
		return err
	}
	db, err := store.NewDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	t, err := roster.New(db, cfg.Auth.BcryptCost).CreateTeacher(ctx, empID, name, password)
	if err != nil {
		return err
	}
	logger.Info.Printf("teacher %s created with id %d", t.EmpID, t.ID)
	return nil
}
