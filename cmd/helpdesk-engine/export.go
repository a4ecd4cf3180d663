// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the article mirror to YAML or JSON",
	Long: `Export writes the full mirrored article set, including precomputed
keywords, to a file or stdout. Useful for inspecting what a sync produced
and for seeding test fixtures.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("out", "", "output file (default stdout)")
	exportCmd.Flags().Bool("all", false, "include inactive articles")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := engineConfig(cmd)

	repo, err := openRepo(cfg.Store)
	if err != nil {
		return err
	}
	defer repo.Close()

	includeAll, _ := cmd.Flags().GetBool("all")
	articles, err := repo.List(context.Background(), !includeAll)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	var data []byte
	switch format {
	case "yaml", "":
		data, err = yaml.Marshal(articles)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
	case "json":
		data, err = json.MarshalIndent(articles, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Exported %d article(s) to %s\n", len(articles), out)
	return nil
}
