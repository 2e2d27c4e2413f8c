package cmd

import (
	"context"
	"fmt"
	"time"

	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/iliyamo/dantour/internal/config"
	"github.com/iliyamo/dantour/internal/database"
	"github.com/iliyamo/dantour/internal/logging"
)

var printSchema bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded database schema",
	Long: `Creates every table the API needs.  Statements are idempotent, so the
command can run on each deploy.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&printSchema, "print", false, "print the schema instead of applying it")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if printSchema {
		fmt.Fprint(cmd.OutOrStdout(), database.Schema())
		return nil
	}
	logging.Setup("dantour-migrate", config.LoadObservabilityConfig())

	db, err := database.Open(config.LoadDB())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	zlog.Info().Msg("schema applied")
	return nil
}
