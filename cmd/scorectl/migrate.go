package main

import (
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/interview-assistant/internal/infrastructure/database"
	"github.com/johnquangdev/interview-assistant/pkg/config"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the embedded database migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE:      runMigrate,
}

var migrateSteps int

func init() {
	migrateCmd.Flags().IntVarP(&migrateSteps, "steps", "n", 0, "Maximum number of migrations to apply, 0 for all (down defaults to 1)")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	direction, steps, err := migrationPlan(args[0], migrateSteps)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.NewPostgresDB(cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = database.CloseDB(db) }()

	n, err := database.Migrate(db, direction, steps)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) %s\n", n, args[0])
	return nil
}

// migrationPlan maps the CLI arguments to a direction and step limit.
// Rolling back everything by accident is avoided by defaulting down to one step.
func migrationPlan(arg string, steps int) (migrate.MigrationDirection, int, error) {
	if steps < 0 {
		return migrate.Up, 0, fmt.Errorf("steps must not be negative")
	}
	switch arg {
	case "up":
		return migrate.Up, steps, nil
	case "down":
		if steps == 0 {
			steps = 1
		}
		return migrate.Down, steps, nil
	}
	return migrate.Up, 0, fmt.Errorf("unknown direction %q, want up or down", arg)
}
