package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	_ "modernc.org/sqlite"

	"blog-server/internal/repository"
)

// Open opens (or creates) a sqlite database at the given path and ensures directories exist.
// ":memory:" opens a private in-memory database.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// single connection: keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return db, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// asDuplicate converts a UNIQUE constraint failure on table into a
// repository.DuplicateError naming the column. Other errors return nil.
func asDuplicate(err error, table string) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(strings.ToLower(msg), "unique") {
		return nil
	}

	field := ""
	marker := table + "."
	if idx := strings.Index(msg, marker); idx >= 0 {
		rest := msg[idx+len(marker):]
		end := strings.IndexFunc(rest, func(r rune) bool {
			return !unicode.IsLetter(r) && r != '_'
		})
		if end < 0 {
			end = len(rest)
		}
		field = rest[:end]
	}
	return &repository.DuplicateError{Field: field, Err: err}
}

func likePattern(search string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(search)) + "%"
}
