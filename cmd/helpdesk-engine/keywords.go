// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/helpdesk-engine/internal/keywords"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords [query...]",
	Short: "Show how a query is interpreted into search keywords",
	Long: `Keywords runs the query through the extractor and prints the primary and
secondary terms the search engine would use. Without a configured model
the deterministic local fallback is shown.`,
	RunE: runKeywords,
}

func init() {
	keywordsCmd.Flags().Bool("json", false, "output keywords as JSON")

	rootCmd.AddCommand(keywordsCmd)
}

func runKeywords(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("provide a query")
	}

	cfg := engineConfig(cmd)
	extractor := keywords.NewExtractor(cfg.Model)

	kw, err := extractor.ForQuery(context.Background(), query)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(kw)
	}

	fmt.Fprintf(os.Stdout, "primary:   %s\n", strings.Join(kw.Primary, ", "))
	fmt.Fprintf(os.Stdout, "secondary: %s\n", strings.Join(kw.Secondary, ", "))
	if kw.Context != "" {
		fmt.Fprintf(os.Stdout, "context:   %s\n", kw.Context)
	}
	return nil
}
