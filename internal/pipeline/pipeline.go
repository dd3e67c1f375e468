// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires the stages together: page source, segmentation
// engine, renderer, and deck writer.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/quizdeck/internal/deck"
	"github.com/pdiddy/quizdeck/internal/export"
	"github.com/pdiddy/quizdeck/internal/pages"
	"github.com/pdiddy/quizdeck/internal/render"
	"github.com/pdiddy/quizdeck/internal/segment"
	"github.com/pdiddy/quizdeck/pkg/types"
)

// Summary reports the outcome of a deck build.
type Summary struct {
	Title    string
	Records  int
	Runs     []types.RunSummary
	Warnings int
}

// Parse reads the document at input and returns the recovered records.
// Per-run progress and warnings go to w.
func Parse(ctx context.Context, cfg types.Config, input string, w io.Writer) (*segment.Result, error) {
	engine, err := segment.New(cfg.Segment)
	if err != nil {
		return nil, fmt.Errorf("configuring segmentation: %w", err)
	}

	src, err := pages.Open(cfg.Extraction, input)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return engine.Parse(ctx, src, w)
}

// Build converts the quiz document at input into an Anki package at
// output. Nothing is written when the document has no generation date or
// its layout is not recognized.
func Build(ctx context.Context, cfg types.Config, input, output string, w io.Writer) (*Summary, error) {
	res, err := Parse(ctx, cfg, input, w)
	if err != nil {
		return nil, err
	}

	date, err := deck.GenerationDate(res.FirstPage, cfg.Deck.DatePattern)
	if err != nil {
		return nil, err
	}
	title := deck.Title(cfg.Deck.TitlePrefix, date)

	cards := render.RenderAll(res.Records, render.DefaultLabels(cfg.Segment))
	if err := deck.Write(ctx, output, deck.Deck{
		Config: cfg.Deck,
		Title:  title,
		Cards:  cards,
	}); err != nil {
		return nil, fmt.Errorf("writing deck %s: %w", output, err)
	}

	fmt.Fprintf(w, "\ntotal: %d questions\n", len(res.Records))
	fmt.Fprintf(w, "wrote %s (%s)\n", output, title)

	return &Summary{
		Title:    title,
		Records:  len(res.Records),
		Runs:     res.Runs,
		Warnings: len(res.Warnings),
	}, nil
}

// Export parses the document at input and dumps the records matched by
// filter to output as YAML or JSON.
func Export(ctx context.Context, cfg types.Config, input, output string, filter export.Filter, w io.Writer) error {
	if _, err := export.FormatFor(output); err != nil {
		return err
	}
	res, err := Parse(ctx, cfg, input, w)
	if err != nil {
		return err
	}

	doc := export.Document{
		Runs:    res.Runs,
		Records: res.Records,
	}
	if date, err := deck.GenerationDate(res.FirstPage, cfg.Deck.DatePattern); err == nil {
		doc.Title = deck.Title(cfg.Deck.TitlePrefix, date)
	}
	for _, warning := range res.Warnings {
		doc.Warnings = append(doc.Warnings, warning.Error())
	}
	doc = filter.Apply(doc)

	if err := export.WriteFile(output, doc); err != nil {
		return fmt.Errorf("writing export %s: %w", output, err)
	}
	fmt.Fprintf(w, "\ntotal: %d questions exported to %s\n", len(doc.Records), output)
	return nil
}
