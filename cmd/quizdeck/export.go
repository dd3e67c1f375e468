// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pdiddy/quizdeck/internal/export"
	"github.com/pdiddy/quizdeck/internal/pipeline"
	"github.com/pdiddy/quizdeck/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export <input.pdf> <output.yaml|output.json>",
	Short: "Dump the recovered questions to YAML or JSON",
	Long: `Export parses the quiz document like the root command but writes the
question records, per-run summaries, and parse warnings to a YAML or JSON
file instead of a deck, for checking the parse by hand.`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	category, _ := cmd.Flags().GetString("category")
	kind, _ := cmd.Flags().GetString("kind")

	filter := export.Filter{Category: category, Kind: types.Kind(kind)}
	return pipeline.Export(context.Background(), cfg, args[0], args[1], filter, cmd.OutOrStdout())
}

func init() {
	exportCmd.Flags().String("category", "", "only export questions of this category")
	exportCmd.Flags().String("kind", "", "only export questions of this kind: multiple_choice or yes_no")

	rootCmd.AddCommand(exportCmd)
}
