// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/helpdesk-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search the article mirror with the broad keyword path",
	Long: `Search interprets the query into primary and secondary keywords, retrieves
matching articles from the mirror, and ranks them by weighted relevance.
A store miss degrades to a narrowed retry on the first primary keyword.`,
	RunE: runSearch,
}

var chatSearchCmd = &cobra.Command{
	Use:   "chat [message...]",
	Short: "Search the article mirror with the strict chat path",
	Long: `Chat tokenizes a conversational message and scores every active article
against the tokens, applying a relevance floor so marginal matches are
suppressed instead of surfaced mid-conversation.`,
	RunE: runChatSearch,
}

func init() {
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	chatSearchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(chatSearchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	return runQuery(cmd, args, func(ctx context.Context, cfg types.EngineConfig, query string) ([]types.SearchResult, error) {
		repo, err := openRepo(cfg.Store)
		if err != nil {
			return nil, err
		}
		defer repo.Close()
		return buildSearch(cfg, repo).Search(ctx, query)
	})
}

func runChatSearch(cmd *cobra.Command, args []string) error {
	return runQuery(cmd, args, func(ctx context.Context, cfg types.EngineConfig, query string) ([]types.SearchResult, error) {
		repo, err := openRepo(cfg.Store)
		if err != nil {
			return nil, err
		}
		defer repo.Close()
		return buildSearch(cfg, repo).SearchChat(ctx, query)
	})
}

func runQuery(cmd *cobra.Command, args []string, search func(context.Context, types.EngineConfig, string) ([]types.SearchResult, error)) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("provide a query")
	}

	cfg := engineConfig(cmd)
	results, err := search(context.Background(), cfg, query)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []types.SearchResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	for i, r := range results {
		fmt.Fprintf(os.Stdout, "%d. %s (score %.1f)\n", i+1, r.Title, r.Score)
		if r.URL != "" {
			fmt.Fprintf(os.Stdout, "   %s\n", r.URL)
		}
		if r.Excerpt != "" {
			fmt.Fprintf(os.Stdout, "   %s\n", r.Excerpt)
		}
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}
