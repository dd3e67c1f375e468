// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/quizdeck/internal/deck"
	"github.com/pdiddy/quizdeck/internal/export"
	"github.com/pdiddy/quizdeck/internal/segment"
	"github.com/pdiddy/quizdeck/pkg/types"
)

const banner = "編\n號答\n案試題 依據法源\n"

const quizText = "政府採購法題庫\n資料產生日期：2024/03/15\n採購契約\n選擇題\n" + banner +
	"12採購之定義為何？(1)甲(2)乙(3)丙(4)丁第 2 條\n" +
	"23下列何者正確？(1)A(2)B(3)C(4)D綜合\n" +
	"\f是非題\n" + banner +
	"1O機關辦理採購應依本法。第 1 條\n" +
	"2X是非第二題\f"

func textConfig() types.Config {
	cfg := types.DefaultConfig()
	cfg.Extraction.Backend = types.BackendText
	return cfg
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quiz.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuild(t *testing.T) {
	input := writeInput(t, quizText)
	output := filepath.Join(t.TempDir(), "quiz.apkg")

	var out bytes.Buffer
	summary, err := Build(context.Background(), textConfig(), input, output, &out)
	require.NoError(t, err, out.String())

	assert.Equal(t, "採購法題庫_2024-03-15", summary.Title)
	assert.Equal(t, 4, summary.Records)
	assert.Len(t, summary.Runs, 2)
	assert.Zero(t, summary.Warnings)
	assert.FileExists(t, output)

	assert.Contains(t, out.String(), "parsed  採購契約_選擇題: 2 questions")
	assert.Contains(t, out.String(), "parsed  採購契約_是非題: 2 questions")
	assert.Contains(t, out.String(), "total: 4 questions")
}

func TestBuildMissingGenerationDate(t *testing.T) {
	input := writeInput(t, "採購契約\n選擇題\n"+banner+"11題目(1)a(2)b(3)c(4)d")
	output := filepath.Join(t.TempDir(), "quiz.apkg")

	var out bytes.Buffer
	_, err := Build(context.Background(), textConfig(), input, output, &out)
	assert.ErrorIs(t, err, deck.ErrMissingGenerationDate)
	assert.NoFileExists(t, output)
}

func TestBuildStructuralFailure(t *testing.T) {
	input := writeInput(t, "資料產生日期：2024/03/15\n沒有題目的文件")
	output := filepath.Join(t.TempDir(), "quiz.apkg")

	var out bytes.Buffer
	_, err := Build(context.Background(), textConfig(), input, output, &out)
	var se *segment.StructuralError
	assert.True(t, errors.As(err, &se), "got %v", err)
	assert.NoFileExists(t, output)
}

func TestBuildMissingInput(t *testing.T) {
	var out bytes.Buffer
	_, err := Build(context.Background(), textConfig(), filepath.Join(t.TempDir(), "absent.txt"), "out.apkg", &out)
	assert.Error(t, err)
}

func TestParseRejectsBadSegmentConfig(t *testing.T) {
	cfg := textConfig()
	cfg.Segment.YesNoMarkers = []string{"O"}
	_, err := Parse(context.Background(), cfg, writeInput(t, quizText), &bytes.Buffer{})
	assert.ErrorContains(t, err, "configuring segmentation")
}

func TestExport(t *testing.T) {
	input := writeInput(t, quizText)
	output := filepath.Join(t.TempDir(), "records.yaml")

	var out bytes.Buffer
	err := Export(context.Background(), textConfig(), input, output, export.Filter{Kind: types.KindYesNo}, &out)
	require.NoError(t, err, out.String())

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var doc export.Document
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "採購法題庫_2024-03-15", doc.Title)
	require.Len(t, doc.Records, 2)
	assert.Equal(t, "是非第二題", doc.Records[1].Prompt)
	assert.Contains(t, out.String(), "total: 2 questions exported")
}

func TestExportRejectsUnknownExtension(t *testing.T) {
	err := Export(context.Background(), textConfig(), writeInput(t, quizText), "records.csv", export.Filter{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unsupported export extension")
}
