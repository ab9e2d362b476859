package main

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/alanbriolat/video-slides/database"
	"github.com/alanbriolat/video-slides/internal/boltdb"
	"github.com/alanbriolat/video-slides/internal/session"
)

type historyStore interface {
	session.Database
	io.Closer
}

type nilHistory struct {
	session.NilDatabase
}

func (nilHistory) Close() error {
	return nil
}

type historyKind string

const (
	historyNone   historyKind = "none"
	historySQLite historyKind = "sqlite"
	historyBolt   historyKind = "bolt"
)

var sqliteExtensions = map[string]bool{
	".db":      true,
	".sqlite":  true,
	".sqlite3": true,
}

// historyKindFor picks the store from the file extension.
func historyKindFor(path string) historyKind {
	switch {
	case path == "":
		return historyNone
	case sqliteExtensions[strings.ToLower(filepath.Ext(path))]:
		return historySQLite
	default:
		return historyBolt
	}
}

func openHistory(path string) (historyStore, error) {
	switch historyKindFor(path) {
	case historySQLite:
		db, err := database.Open(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	case historyBolt:
		return boltdb.New(path)
	default:
		return nilHistory{}, nil
	}
}
