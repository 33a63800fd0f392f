package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"

	"github.com/codyseavey/tcg-catalog/internal/catalog"
	"github.com/codyseavey/tcg-catalog/internal/config"
	"github.com/codyseavey/tcg-catalog/internal/database"
	"github.com/codyseavey/tcg-catalog/internal/services"
)

var (
	dataDir     string
	catalogFile string
	noDownload  bool
	withPrices  bool
	dbPath      string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "tcgq",
	Short: "Query the Pokemon TCG catalog from the command line",
	Long: `tcgq loads the Pokemon TCG catalog (downloading pokemon-tcg-data on first
use) and runs the same searches, filters and sorts as the catalog server.

Defaults come from tcg-catalog.toml and TCG_* environment variables.`,
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding pokemon-tcg-data (default from config)")
	RootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "pre-normalized catalog JSON file, used instead of --data-dir")
	RootCmd.PersistentFlags().BoolVar(&noDownload, "no-download", false, "fail instead of downloading missing catalog data")
	RootCmd.PersistentFlags().BoolVar(&withPrices, "prices", false, "attach prices from the price database")
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "price database path (default from config)")

	RootCmd.AddCommand(searchCmd, suggestCmd, showCmd, statsCmd, exportCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

func loaderFromFlags() (*services.CatalogLoader, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cfg, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if catalogFile != "" {
		cfg.CatalogFile = catalogFile
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	download := cfg.DownloadCatalog && !noDownload
	return services.NewCatalogLoader(cfg.DataDir, cfg.CatalogFile, download), cfg, nil
}

// loadEngine builds an engine over the configured catalog and, with
// --prices, the persisted price table
func loadEngine(ctx context.Context) (*catalog.Engine, error) {
	loader, cfg, err := loaderFromFlags()
	if err != nil {
		return nil, err
	}
	payload, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	engine, err := catalog.NewEngine(cfg.QueryCacheSize)
	if err != nil {
		return nil, err
	}
	if _, err := engine.LoadCatalog(payload); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	if withPrices {
		db, err := database.Open(cfg.DBPath, logger.Default.LogMode(logger.Silent))
		if err != nil {
			return nil, err
		}
		table, _, err := services.NewPriceService(db).LoadTable()
		if err != nil {
			return nil, err
		}
		engine.SetPrices(table)
	}
	return engine, nil
}
