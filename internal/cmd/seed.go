package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/dantour/internal/config"
	"github.com/iliyamo/dantour/internal/database"
	"github.com/iliyamo/dantour/internal/logging"
	"github.com/iliyamo/dantour/internal/repository"
	"github.com/iliyamo/dantour/internal/seed"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load roles and the product taxonomy",
	Long: `Loads user roles, product types, categories, amenities and target
audiences from a YAML file.  Without --file the built-in data is used.
Existing rows are matched by name and left untouched.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "seed YAML file")
}

func loadSeed() (seed.File, error) {
	if seedFile == "" {
		return seed.Default()
	}
	f, err := os.Open(seedFile)
	if err != nil {
		return seed.File{}, err
	}
	defer f.Close()
	return seed.Parse(f)
}

func runSeed(cmd *cobra.Command, args []string) error {
	log := logging.Setup("dantour-seed", config.LoadObservabilityConfig())

	doc, err := loadSeed()
	if err != nil {
		return fmt.Errorf("failed to read seed data: %w", err)
	}

	db, err := database.Open(config.LoadDB())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	s := &seed.Seeder{
		Roles:     repository.NewRoleRepo(db),
		Taxonomy:  repository.NewTaxonomyRepo(db),
		Amenities: repository.NewAmenityRepo(db),
	}
	st, err := s.Apply(log.WithContext(ctx), doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "roles %d, types %d, categories %d, amenities %d, audiences %d\n",
		st.Roles, st.Types, st.Categories, st.Amenities, st.Audiences)
	return nil
}
