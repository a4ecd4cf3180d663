// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the helpdesk-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/helpdesk-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets secrets.Store

// rootCmd is the base command for the helpdesk-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "helpdesk-engine",
	Short: "Knowledge-base mirror and search engine for IT helpdesk assistants",
	Long: `helpdesk-engine mirrors a hosted knowledge base into a local article store,
extracts search keywords for each article, and answers helpdesk queries
against the mirror.

Each operation is a subcommand: sync pulls and reconciles the upstream
article set, search and chat query the mirror, keywords inspects query
interpretation, and serve exposes everything over HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
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
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./helpdesk-engine.yaml or ~/.config/helpdesk-engine/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "article store path (default: helpdesk.db, empty config value = in-memory)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("helpdesk-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "helpdesk-engine"))
		}
	}

	viper.SetEnvPrefix("HELPDESK_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
