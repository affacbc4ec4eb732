// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the litcorpus CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litcorpus/internal/logging"
	"github.com/pdiddy/litcorpus/internal/secrets"
	"github.com/pdiddy/litcorpus/internal/venues"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds the values loaded from the secrets directory at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the litcorpus CLI.
var rootCmd = &cobra.Command{
	Use:   "litcorpus",
	Short: "Build a local corpus of publications for a venue",
	Long: `litcorpus downloads the metadata and PDFs of all publications of one
venue volume or year, for example ICSE-2024, into a directory of uniquely
named files with a BibTeX database and a manifest.

Runs are resumable: rerunning the same target continues where the last run
stopped.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, _, err := logging.Setup(logging.Config{Level: viper.GetString("log-level"), Console: os.Stdout}); err != nil {
			return err
		}
		s, err := secrets.Load(viper.GetString("secrets-dir"))
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			slog.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./litcorpus.yaml or ~/.config/litcorpus/litcorpus.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "console log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of plain-text secret files")
	rootCmd.PersistentFlags().String("venues", "", "YAML file with additional venues")

	for _, name := range []string{"log-level", "secrets-dir", "venues"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func initConfig() {
	// A .env file may hold LITCORPUS_* settings.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("litcorpus")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "litcorpus"))
		}
	}

	viper.SetEnvPrefix("LITCORPUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadCatalog returns the built-in venues merged with the --venues file.
func loadCatalog() (venues.Catalog, error) {
	catalog, err := venues.Builtin()
	if err != nil {
		return nil, err
	}
	if path := viper.GetString("venues"); path != "" {
		extra, err := venues.Load(path)
		if err != nil {
			return nil, err
		}
		catalog = catalog.Merge(extra)
	}
	return catalog, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if errors.Is(err, context.Canceled) {
		slog.Error("Manual interruption - cancelling.")
	}
	if err != nil {
		os.Exit(1)
	}
}
