package indexer

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteIndexer indexes players to a local SQLite file, for runs without a database server
type SQLiteIndexer struct {
	sqlIndexer
	tableName string
}

// NewSQLiteIndexer opens (or creates) the SQLite database at path
func NewSQLiteIndexer(path string, tableName string) (*SQLiteIndexer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; the worker pool shares this handle
	db.SetMaxOpenConns(1)

	indexer := &SQLiteIndexer{
		sqlIndexer: sqlIndexer{
			db:   db,
			name: "SQLite",
			upsertQuery: fmt.Sprintf(`
		INSERT INTO %s (
			id, name, position, nationality, club,
			appearances, source, source_url, crawled_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			position = excluded.position,
			nationality = excluded.nationality,
			club = excluded.club,
			appearances = excluded.appearances,
			source = excluded.source,
			source_url = excluded.source_url,
			crawled_at = excluded.crawled_at,
			updated_at = CURRENT_TIMESTAMP
	`, tableName),
		},
		tableName: tableName,
	}

	if err := indexer.ensureTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure table: %w", err)
	}

	return indexer, nil
}

func (i *SQLiteIndexer) ensureTable() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			position TEXT,
			nationality TEXT,
			club TEXT,
			appearances INTEGER DEFAULT 0,
			source TEXT,
			source_url TEXT,
			crawled_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`, i.tableName)

	_, err := i.db.Exec(query)
	return err
}
