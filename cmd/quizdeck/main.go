// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the quizdeck CLI, which turns the
// procurement-law quiz PDF into an Anki flashcard deck.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/quizdeck/internal/pipeline"
	"github.com/pdiddy/quizdeck/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd builds a deck from a quiz document.
var rootCmd = &cobra.Command{
	Use:   "quizdeck <input.pdf> <output.apkg>",
	Short: "Convert the procurement-law quiz PDF into an Anki deck",
	Long: `quizdeck reads the government procurement-law quiz PDF, recovers every
multiple-choice and yes/no question with its answer, category, and legal
reference, and writes an Anki package (.apkg) titled after the document's
generation date.

Per-run question counts are printed as the document is parsed. The command
fails without writing a deck when the generation date is missing or the
document layout is not recognized.`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE:         runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	_, err = pipeline.Build(context.Background(), cfg, args[0], args[1], cmd.OutOrStdout())
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./quizdeck.yaml or ~/.config/quizdeck/quizdeck.yaml)")
	rootCmd.PersistentFlags().String("backend", "", "text extraction backend: native, pdftotext, or text")
	_ = viper.BindPFlag("extraction.backend", rootCmd.PersistentFlags().Lookup("backend"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("quizdeck")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "quizdeck"))
		}
	}

	viper.SetEnvPrefix("QUIZDECK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig overlays the config file and QUIZDECK_* environment on the
// built-in defaults.
func loadConfig() (types.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (types.Config, error) {
	setDefaults(v, types.DefaultConfig())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every configuration key so that lists from a
// config file replace the defaults instead of merging into them.
func setDefaults(v *viper.Viper, d types.Config) {
	v.SetDefault("extraction.backend", d.Extraction.Backend)
	if len(d.Extraction.NoisePatterns) > 0 {
		v.SetDefault("extraction.noise_patterns", d.Extraction.NoisePatterns)
	}

	v.SetDefault("segment.categories", d.Segment.Categories)
	v.SetDefault("segment.multiple_choice_label", d.Segment.MultipleChoiceLabel)
	v.SetDefault("segment.yes_no_label", d.Segment.YesNoLabel)
	v.SetDefault("segment.yes_no_markers", d.Segment.YesNoMarkers)
	v.SetDefault("segment.banner_pattern", d.Segment.BannerPattern)
	v.SetDefault("segment.reference_pattern", d.Segment.ReferencePattern)
	v.SetDefault("segment.line_anchored", d.Segment.LineAnchored)

	v.SetDefault("deck.title_prefix", d.Deck.TitlePrefix)
	v.SetDefault("deck.date_pattern", d.Deck.DatePattern)
	v.SetDefault("deck.deck_id", d.Deck.DeckID)
	v.SetDefault("deck.model_id", d.Deck.ModelID)
	v.SetDefault("deck.model_name", d.Deck.ModelName)
	v.SetDefault("deck.template_name", d.Deck.TemplateName)
	v.SetDefault("deck.css", d.Deck.CSS)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
