// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deck titles and serializes flashcard decks as Anki packages
// (.apkg): a zip archive holding a collection.anki2 SQLite database and
// an empty media manifest.
package deck

import (
	"archive/zip"
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/quizdeck/pkg/types"
)

const (
	collectionFile = "collection.anki2"
	mediaFile      = "media"

	// fieldSeparator joins note fields in notes.flds.
	fieldSeparator = "\x1f"

	defaultDeckID = 1
)

// noteFields are the note type's fields, in order.
var noteFields = []string{"Question", "Answer", "QuestionNumber"}

// guidNamespace scopes note GUIDs so re-importing a regenerated deck
// updates existing notes instead of duplicating them.
var guidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/pdiddy/quizdeck"))

// Deck is a titled set of cards ready to be written.
type Deck struct {
	Config types.DeckConfig
	Title  string
	Cards  []types.Card

	// Created stamps note and card ids. Zero means now.
	Created time.Time
}

// NoteGUID returns the stable note identifier for a card.
func NoteGUID(c types.Card) string {
	return uuid.NewSHA1(guidNamespace, []byte(c.Tag+fieldSeparator+c.Front)).String()
}

// Write serializes d as an Anki package at path. The package is built in
// a temporary file next to path and renamed into place, so a failed write
// leaves no partial deck behind.
func Write(ctx context.Context, path string, d Deck) error {
	if d.Title == "" {
		return errors.New("deck title must not be empty")
	}
	if d.Created.IsZero() {
		d.Created = time.Now()
	}

	work, err := os.MkdirTemp("", "quizdeck-")
	if err != nil {
		return fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(work)

	dbPath := filepath.Join(work, collectionFile)
	if err := buildCollection(ctx, dbPath, d); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".quizdeck-*.apkg")
	if err != nil {
		return fmt.Errorf("creating temporary package: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if err := writeArchive(tmp, dbPath); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temporary package: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("moving package into place: %w", err)
	}
	committed = true
	return nil
}

func writeArchive(w io.Writer, dbPath string) error {
	zw := zip.NewWriter(w)

	db, err := os.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening collection: %w", err)
	}
	defer db.Close()

	fw, err := zw.Create(collectionFile)
	if err != nil {
		return fmt.Errorf("adding %s: %w", collectionFile, err)
	}
	if _, err := io.Copy(fw, db); err != nil {
		return fmt.Errorf("writing %s: %w", collectionFile, err)
	}

	mw, err := zw.Create(mediaFile)
	if err != nil {
		return fmt.Errorf("adding %s: %w", mediaFile, err)
	}
	if _, err := io.WriteString(mw, "{}"); err != nil {
		return fmt.Errorf("writing %s: %w", mediaFile, err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing package: %w", err)
	}
	return nil
}

func buildCollection(ctx context.Context, dbPath string, d Deck) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("opening collection: %w", err)
	}
	defer db.Close()

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	if err := insertCollection(ctx, db, d); err != nil {
		return err
	}
	if err := insertNotes(ctx, db, d); err != nil {
		return err
	}
	return db.Close()
}

func insertCollection(ctx context.Context, db *sql.DB, d Deck) error {
	cfg := d.Config
	nowSec := d.Created.Unix()
	nowMS := d.Created.UnixMilli()

	models := map[string]model{
		strconv.FormatInt(cfg.ModelID, 10): {
			ID:        cfg.ModelID,
			Name:      cfg.ModelName,
			Mod:       nowSec,
			USN:       -1,
			DeckID:    cfg.DeckID,
			Templates: []template{{Name: cfg.TemplateName, QuestionFormat: "{{Question}}", AnswerFormat: "{{Answer}}"}},
			Fields:    modelFields(),
			CSS:       cfg.CSS,
			LatexPre:  "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n\\setlength{\\parindent}{0in}\n\\begin{document}\n",
			LatexPost: "\\end{document}",
			Tags:      []string{},
			Vers:      []int{},
			Req:       [][]any{{0, "all", []int{0}}},
		},
	}
	decks := map[string]deckEntry{
		strconv.Itoa(defaultDeckID): newDeckEntry(defaultDeckID, "Default", nowSec),
		strconv.FormatInt(cfg.DeckID, 10): newDeckEntry(cfg.DeckID, d.Title, nowSec),
	}

	blobs := make([]string, 0, 4)
	for _, v := range []any{collectionConf, models, decks, deckConf} {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding collection metadata: %w", err)
		}
		blobs = append(blobs, string(b))
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
		 VALUES (1, ?, ?, ?, ?, 0, 0, 0, ?, ?, ?, ?, '{}')`,
		nowSec, nowMS, nowMS, schemaVersion, blobs[0], blobs[1], blobs[2], blobs[3],
	)
	if err != nil {
		return fmt.Errorf("inserting collection row: %w", err)
	}
	return nil
}

func modelFields() []field {
	out := make([]field, len(noteFields))
	for i, name := range noteFields {
		out[i] = field{Name: name, Ord: i, Font: "Arial", Size: 20, Media: []string{}}
	}
	return out
}

func newDeckEntry(id int64, name string, mod int64) deckEntry {
	return deckEntry{ID: id, Name: name, Mod: mod, USN: -1, Conf: 1}
}

func insertNotes(ctx context.Context, db *sql.DB, d Deck) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	noteStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
		 VALUES (?, ?, ?, ?, -1, ?, ?, ?, ?, 0, '')`)
	if err != nil {
		return fmt.Errorf("preparing note insert: %w", err)
	}
	defer noteStmt.Close()

	cardStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data)
		 VALUES (?, ?, ?, 0, ?, -1, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')`)
	if err != nil {
		return fmt.Errorf("preparing card insert: %w", err)
	}
	defer cardStmt.Close()

	base := d.Created.UnixMilli()
	mod := d.Created.Unix()
	for i, c := range d.Cards {
		id := base + int64(i)
		flds := strings.Join([]string{c.Front, c.Back, strconv.Itoa(c.SequenceNumber)}, fieldSeparator)
		if _, err := noteStmt.ExecContext(ctx,
			id, NoteGUID(c), d.Config.ModelID, mod, " "+c.Tag+" ", flds, c.Front, checksum(c.Front),
		); err != nil {
			return fmt.Errorf("inserting note %d: %w", i+1, err)
		}
		if _, err := cardStmt.ExecContext(ctx, id, id, d.Config.DeckID, mod, i+1); err != nil {
			return fmt.Errorf("inserting card %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing notes: %w", err)
	}
	return nil
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// checksum is Anki's duplicate-detection hash: the first 32 bits of the
// SHA-1 of the sort field with markup removed.
func checksum(sortField string) int64 {
	plain := html.UnescapeString(htmlTag.ReplaceAllString(sortField, ""))
	sum := sha1.Sum([]byte(plain))
	v, _ := strconv.ParseInt(hex.EncodeToString(sum[:])[:8], 16, 64)
	return v
}
