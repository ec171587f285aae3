package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	_ "github.com/lib/pq"

	"github.com/statforge/statforge/internal/config"
	"github.com/statforge/statforge/internal/database"
	"github.com/statforge/statforge/internal/logging"
	"github.com/statforge/statforge/internal/models"
)

var (
	genDryRun     bool
	genStatistics int
	genAntystics  int
	genSourceIDs  []string
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one generation cycle and print the result",
	Long: `Generate executes a single content generation run against the
configured source catalog and prints the full run accounting as JSON.

Without DATABASE_URL only dry runs are possible.

Example:
  statforge generate --dry-run
  statforge generate --statistics 5 --antystics 2
  statforge generate --source gus --source memy`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "report what would be created without persisting")
	generateCmd.Flags().IntVar(&genStatistics, "statistics", -1, "target number of statistic drafts (default: configured maximum)")
	generateCmd.Flags().IntVar(&genAntystics, "antystics", -1, "target number of antistic drafts (default: configured maximum)")
	generateCmd.Flags().StringArrayVar(&genSourceIDs, "source", nil, "restrict the run to specific source IDs (repeatable)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	var repo database.DraftRepository
	if cfg.Database.URL != "" {
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			return fmt.Errorf("pinging database: %w", err)
		}
		if err := database.RunMigrations(db, cfg.Database.MigrationsDir, logger); err != nil {
			logger.Warn("failed to run migrations, continuing anyway", "error", err)
		}
		repo = database.NewPostgresDraftRepository(db)
	} else if !genDryRun {
		return fmt.Errorf("DATABASE_URL is required unless --dry-run is set")
	}

	_, _, orch := buildPipeline(cfg.Generation, repo, nil, logger)

	req := models.GenerationRequest{
		DryRun:           genDryRun,
		TargetStatistics: cfg.Generation.MaxStatistics,
		TargetAntystics:  cfg.Generation.MaxAntystics,
		SourceIDs:        genSourceIDs,
	}
	if genStatistics >= 0 {
		req.TargetStatistics = genStatistics
	}
	if genAntystics >= 0 {
		req.TargetAntystics = genAntystics
	}

	result, err := orch.Run(context.Background(), req)
	if err != nil {
		return fmt.Errorf("generation run: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}
