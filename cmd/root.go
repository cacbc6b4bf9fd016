package cmd

import (
	"context"
	"fmt"
	"os"

	"jewelrydam/config"
	"jewelrydam/db"
	"jewelrydam/models"
	"jewelrydam/storage"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var cfg *config.Config

// rootCmd runs the API server when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jewelrydam",
	Short: "Jewelry DAM - digital asset management for jewelry photography",
	Long: "Jewelry DAM stores jewelry images in an S3 compatible object store and\n" +
		"catalogs them in a relational database, grouped by project and client.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
	},
	RunE: runServe,
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reconcileCmd)
}

// openDatabase connects and brings the schema up to date
func openDatabase() (*gorm.DB, error) {
	conn, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}
	if _, err = models.Migrate(conn); err != nil {
		_ = db.Close(conn)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return conn, nil
}

func openStore(ctx context.Context) (storage.ObjectStore, error) {
	store, err := storage.New(storage.BucketFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	if s3, ok := store.(*storage.S3Storage); ok {
		if err = s3.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("bucket %s: %w", cfg.MinioBucket, err)
		}
	}
	return store, nil
}
