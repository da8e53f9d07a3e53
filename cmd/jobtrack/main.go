// Package main provides the entry point for the job application tracker.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonathan/jobtrack/internal/config"
	"github.com/jonathan/jobtrack/internal/seed"
	"github.com/jonathan/jobtrack/internal/store"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "jobtrack",
	Short:         "Job application tracker",
	Long:          "jobtrack keeps a list of job applications, serves it over a JSON API and prints it from the terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// loadStore builds a store holding the configured fixture. An unseeded
// configuration yields an empty store.
func loadStore(cfg *config.Config) (*store.Store, error) {
	st := store.New()
	if !cfg.Seed {
		return st, nil
	}
	if _, err := seed.Load(st, cfg.SeedFile); err != nil {
		return nil, fmt.Errorf("failed to seed store: %w", err)
	}
	return st, nil
}
