// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

// Anki collection schema, version 11. Older and current Anki releases
// import it and upgrade in place.
const schemaVersion = 11

var schemaStatements = []string{
	`CREATE TABLE col (
		id     integer primary key,
		crt    integer not null,
		mod    integer not null,
		scm    integer not null,
		ver    integer not null,
		dty    integer not null,
		usn    integer not null,
		ls     integer not null,
		conf   text not null,
		models text not null,
		decks  text not null,
		dconf  text not null,
		tags   text not null
	)`,
	`CREATE TABLE notes (
		id    integer primary key,
		guid  text not null,
		mid   integer not null,
		mod   integer not null,
		usn   integer not null,
		tags  text not null,
		flds  text not null,
		sfld  integer not null,
		csum  integer not null,
		flags integer not null,
		data  text not null
	)`,
	`CREATE TABLE cards (
		id     integer primary key,
		nid    integer not null,
		did    integer not null,
		ord    integer not null,
		mod    integer not null,
		usn    integer not null,
		type   integer not null,
		queue  integer not null,
		due    integer not null,
		ivl    integer not null,
		factor integer not null,
		reps   integer not null,
		lapses integer not null,
		left   integer not null,
		odue   integer not null,
		odid   integer not null,
		flags  integer not null,
		data   text not null
	)`,
	`CREATE TABLE revlog (
		id      integer primary key,
		cid     integer not null,
		usn     integer not null,
		ease    integer not null,
		ivl     integer not null,
		lastIvl integer not null,
		factor  integer not null,
		time    integer not null,
		type    integer not null
	)`,
	`CREATE TABLE graves (
		usn  integer not null,
		oid  integer not null,
		type integer not null
	)`,
	`CREATE INDEX ix_notes_usn ON notes (usn)`,
	`CREATE INDEX ix_cards_usn ON cards (usn)`,
	`CREATE INDEX ix_revlog_usn ON revlog (usn)`,
	`CREATE INDEX ix_cards_nid ON cards (nid)`,
	`CREATE INDEX ix_cards_sched ON cards (did, queue, due)`,
	`CREATE INDEX ix_revlog_cid ON revlog (cid)`,
	`CREATE INDEX ix_notes_csum ON notes (csum)`,
}

// model is the note type stored in col.models.
type model struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Type      int        `json:"type"`
	Mod       int64      `json:"mod"`
	USN       int        `json:"usn"`
	SortField int        `json:"sortf"`
	DeckID    int64      `json:"did"`
	Templates []template `json:"tmpls"`
	Fields    []field    `json:"flds"`
	CSS       string     `json:"css"`
	LatexPre  string     `json:"latexPre"`
	LatexPost string     `json:"latexPost"`
	Tags      []string   `json:"tags"`
	Vers      []int      `json:"vers"`
	Req       [][]any    `json:"req"`
}

type template struct {
	Name           string `json:"name"`
	Ord            int    `json:"ord"`
	QuestionFormat string `json:"qfmt"`
	AnswerFormat   string `json:"afmt"`
	DeckID         *int64 `json:"did"`
	BrowserQFormat string `json:"bqfmt"`
	BrowserAFormat string `json:"bafmt"`
}

type field struct {
	Name   string   `json:"name"`
	Ord    int      `json:"ord"`
	Sticky bool     `json:"sticky"`
	RTL    bool     `json:"rtl"`
	Font   string   `json:"font"`
	Size   int      `json:"size"`
	Media  []string `json:"media"`
}

// deckEntry is one deck stored in col.decks.
type deckEntry struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Desc             string `json:"desc"`
	Mod              int64  `json:"mod"`
	USN              int    `json:"usn"`
	Collapsed        bool   `json:"collapsed"`
	BrowserCollapsed bool   `json:"browserCollapsed"`
	NewToday         [2]int `json:"newToday"`
	RevToday         [2]int `json:"revToday"`
	LrnToday         [2]int `json:"lrnToday"`
	TimeToday        [2]int `json:"timeToday"`
	Dyn              int    `json:"dyn"`
	ExtendNew        int    `json:"extendNew"`
	ExtendRev        int    `json:"extendRev"`
	Conf             int64  `json:"conf"`
}

// deckConf is the default option group referenced by every deck.
var deckConf = map[string]any{
	"1": map[string]any{
		"id":       1,
		"name":     "Default",
		"mod":      0,
		"usn":      0,
		"maxTaken": 60,
		"autoplay": true,
		"timer":    0,
		"replayq":  true,
		"dyn":      false,
		"new": map[string]any{
			"bury":          true,
			"delays":        []float64{1, 10},
			"initialFactor": 2500,
			"ints":          []int{1, 4, 7},
			"order":         1,
			"perDay":        20,
			"separate":      true,
		},
		"rev": map[string]any{
			"bury":     true,
			"ease4":    1.3,
			"fuzz":     0.05,
			"ivlFct":   1,
			"maxIvl":   36500,
			"minSpace": 1,
			"perDay":   100,
		},
		"lapse": map[string]any{
			"delays":      []float64{10},
			"leechAction": 0,
			"leechFails":  8,
			"minInt":      1,
			"mult":        0,
		},
	},
}

// collectionConf is col.conf.
var collectionConf = map[string]any{
	"activeDecks":   []int{1},
	"addToCur":      true,
	"collapseTime":  1200,
	"curDeck":       1,
	"curModel":      "1",
	"dueCounts":     true,
	"estTimes":      true,
	"newBury":       true,
	"newSpread":     0,
	"nextPos":       1,
	"sortBackwards": false,
	"sortType":      "noteFld",
	"timeLim":       0,
}
