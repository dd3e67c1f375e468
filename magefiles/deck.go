//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Deck builds the CLI and converts input (a quiz PDF) into the Anki
// package output.
func Deck(input, output string) error {
	mg.Deps(Build)
	if err := sh.RunV(binPath, input, output); err != nil {
		return fmt.Errorf("building deck: %w", err)
	}
	return nil
}

// Dump builds the CLI and exports the records of input to output
// (.yaml or .json) for manual verification.
func Dump(input, output string) error {
	mg.Deps(Build)
	return sh.RunV(binPath, "export", input, output)
}
