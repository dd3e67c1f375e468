// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pages

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
)

const binPdftotext = "pdftotext"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	return cmd.Run()
}

var defaultExec executor = &osExecutor{}

// OpenPdftotext converts the PDF at path with poppler's pdftotext and
// serves the resulting pages. The binary runs once for the whole document.
func OpenPdftotext(path string) (*SliceSource, error) {
	return openPdftotext(defaultExec, path)
}

func openPdftotext(exec executor, path string) (*SliceSource, error) {
	if _, err := exec.LookPath(binPdftotext); err != nil {
		return nil, fmt.Errorf("%s not found on PATH (install poppler-utils or use the native backend): %w", binPdftotext, err)
	}

	var out bytes.Buffer
	args := []string{"-enc", "UTF-8", path, "-"}
	if err := exec.RunPiped(binPdftotext, args, nil, &out); err != nil {
		return nil, fmt.Errorf("running %s on %s: %w", binPdftotext, path, err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("%s produced empty output for %s", binPdftotext, path)
	}
	return NewSliceSource(splitPages(out.String())), nil
}
