package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"chapterly/internal/app"
	"chapterly/internal/config"
	"chapterly/internal/ingest"
	"chapterly/internal/util"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Import books into the catalog",
	Long:  "Import books into the catalog",
}

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Download the built-in catalog and import it",
	Long:  "Download the built-in catalog and import it",
	RunE:  runRemote,
}

var dirCmd = &cobra.Command{
	Use:   "dir <path>",
	Short: "Import markdown files from a local directory",
	Long:  "Import markdown files from a local directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runDir,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert catalog metadata without downloading texts",
	Long:  "Insert catalog metadata without downloading texts",
	RunE:  runSeed,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.AddCommand(remoteCmd)
	rootCmd.AddCommand(dirCmd)
	rootCmd.AddCommand(seedCmd)
}

func buildRunner() (*ingest.Runner, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := util.InitLogger(cfg.LogLevel)

	appCore, err := app.New(app.Config{
		DatabaseURL:    cfg.DatabaseURL,
		MinioEndpoint:  cfg.MinioEndpoint,
		MinioAccessKey: cfg.MinioAccessKey,
		MinioSecretKey: cfg.MinioSecretKey,
		MinioBucket:    cfg.MinioBucket,
		MinioUseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init app: %w", err)
	}

	timeout, err := config.ParseFetchTimeout(cfg.FetchTimeout)
	if err != nil {
		return nil, err
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	fetcher := ingest.NewFetcher(timeout)
	return ingest.NewRunner(appCore.Store(), appCore.Covers(), fetcher, logger), nil
}

func runRemote(cmd *cobra.Command, _ []string) error {
	runner, err := buildRunner()
	if err != nil {
		return err
	}
	imported, err := runner.IngestCatalog(cmd.Context(), ingest.DefaultCatalog)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d of %d books\n", imported, len(ingest.DefaultCatalog))
	return nil
}

func runDir(cmd *cobra.Command, args []string) error {
	runner, err := buildRunner()
	if err != nil {
		return err
	}
	imported, err := runner.IngestDir(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("imported %d files\n", imported)
	return nil
}

func runSeed(_ *cobra.Command, _ []string) error {
	runner, err := buildRunner()
	if err != nil {
		return err
	}
	seeded, err := runner.SeedCatalog(ingest.DefaultCatalog)
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d books\n", seeded)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
