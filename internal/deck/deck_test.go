// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import (
	"archive/zip"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/quizdeck/pkg/types"
)

func TestGenerationDate(t *testing.T) {
	pattern := types.DefaultConfig().Deck.DatePattern
	tests := []struct {
		name    string
		page    string
		want    string
		wantErr error
	}{
		{
			name: "date with slashes",
			page: "政府採購法題庫\n資料產生日期：2024/03/15\n採購契約",
			want: "2024-03-15",
		},
		{
			name: "trailing whitespace",
			page: "資料產生日期：113/01/02  \r\n",
			want: "113-01-02",
		},
		{
			name:    "marker missing",
			page:    "政府採購法題庫\n選擇題",
			wantErr: ErrMissingGenerationDate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerationDate(tt.page, pattern)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerationDateBadPattern(t *testing.T) {
	_, err := GenerationDate("x", "(")
	assert.ErrorContains(t, err, "date pattern")

	_, err = GenerationDate("資料產生日期", "資料產生日期")
	assert.ErrorContains(t, err, "no capture group")
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "採購法題庫_2024-03-15", Title("採購法題庫_", "2024-03-15"))
}

func TestNoteGUIDStable(t *testing.T) {
	a := types.Card{Front: "front", Tag: "採購契約_選擇題"}
	b := types.Card{Front: "front", Tag: "採購契約_是非題"}

	assert.Equal(t, NoteGUID(a), NoteGUID(a))
	assert.NotEqual(t, NoteGUID(a), NoteGUID(b))
}

func TestChecksum(t *testing.T) {
	// sha1("abc") = a9993e36...
	assert.Equal(t, int64(0xa9993e36), checksum("<strong>abc</strong>"))
	assert.Equal(t, checksum("a&amp;b"), checksum("a&b"))
}

func sampleDeck() Deck {
	return Deck{
		Config:  types.DefaultConfig().Deck,
		Title:   "採購法題庫_2024-03-15",
		Created: time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC),
		Cards: []types.Card{
			{Front: "(&ensp;)<strong>q1</strong>", Back: "( O )<strong>q1</strong><hr id=answer>O<br>", Tag: "採購契約_是非題", SequenceNumber: 1},
			{Front: "(&ensp;)<strong>q2</strong>", Back: "( X )<strong>q2</strong><hr id=answer>X<br>", Tag: "採購契約_是非題", SequenceNumber: 2},
		},
	}
}

// openCollection extracts collection.anki2 from the package at path and
// opens it.
func openCollection(t *testing.T, path string) (*sql.DB, map[string]string) {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	entries := make(map[string]string)
	dbPath := filepath.Join(t.TempDir(), collectionFile)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		if f.Name == collectionFile {
			require.NoError(t, os.WriteFile(dbPath, data, 0o644))
			entries[f.Name] = "<db>"
			continue
		}
		entries[f.Name] = string(data)
	}

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, entries
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiz.apkg")
	d := sampleDeck()
	require.NoError(t, Write(context.Background(), path, d))

	db, entries := openCollection(t, path)
	assert.Equal(t, "{}", entries[mediaFile])
	assert.Contains(t, entries, collectionFile)

	rows, err := db.Query(`SELECT guid, mid, tags, flds, sfld FROM notes ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var n int
	for rows.Next() {
		var guid, tags, flds, sfld string
		var mid int64
		require.NoError(t, rows.Scan(&guid, &mid, &tags, &flds, &sfld))
		card := d.Cards[n]
		assert.Equal(t, NoteGUID(card), guid)
		assert.Equal(t, d.Config.ModelID, mid)
		assert.Equal(t, " 採購契約_是非題 ", tags)
		assert.Equal(t, []string{card.Front, card.Back, []string{"1", "2"}[n]}, strings.Split(flds, fieldSeparator))
		assert.Equal(t, card.Front, sfld)
		n++
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, 2, n)

	var cards int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM cards WHERE did = ?`, d.Config.DeckID).Scan(&cards))
	assert.Equal(t, 2, cards)

	var decksJSON, modelsJSON string
	require.NoError(t, db.QueryRow(`SELECT decks, models FROM col`).Scan(&decksJSON, &modelsJSON))

	var decks map[string]deckEntry
	require.NoError(t, json.Unmarshal([]byte(decksJSON), &decks))
	assert.Equal(t, "採購法題庫_2024-03-15", decks["1614529274"].Name)

	var models map[string]model
	require.NoError(t, json.Unmarshal([]byte(modelsJSON), &models))
	m := models["1472238217"]
	assert.Equal(t, "採購法", m.Name)
	require.Len(t, m.Templates, 1)
	assert.Equal(t, "GPA Quiz", m.Templates[0].Name)
	assert.Len(t, m.Fields, 3)
	assert.Equal(t, d.Config.CSS, m.CSS)
}

func TestWriteReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quiz.apkg")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, Write(context.Background(), path, sampleDeck()))
	_, entries := openCollection(t, path)
	assert.Contains(t, entries, collectionFile)

	leftovers, err := filepath.Glob(filepath.Join(dir, ".quizdeck-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestWriteFailureLeavesNoPackage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quiz.apkg")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, Write(ctx, path, sampleDeck()))
	assert.NoFileExists(t, path)

	d := sampleDeck()
	d.Title = ""
	assert.Error(t, Write(context.Background(), path, d))
	assert.NoFileExists(t, path)
}
