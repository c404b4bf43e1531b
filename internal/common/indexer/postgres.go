package indexer

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresIndexer indexes players to PostgreSQL
type PostgresIndexer struct {
	sqlIndexer
	tableName string
}

// NewPostgresIndexer creates a new PostgreSQL indexer
func NewPostgresIndexer(connStr string, tableName string) (*PostgresIndexer, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	indexer := &PostgresIndexer{
		sqlIndexer: sqlIndexer{
			db:   db,
			name: "Postgres",
			upsertQuery: fmt.Sprintf(`
		INSERT INTO %s (
			id, name, position, nationality, club,
			appearances, source, source_url, crawled_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			position = EXCLUDED.position,
			nationality = EXCLUDED.nationality,
			club = EXCLUDED.club,
			appearances = EXCLUDED.appearances,
			source = EXCLUDED.source,
			source_url = EXCLUDED.source_url,
			crawled_at = EXCLUDED.crawled_at,
			updated_at = NOW()
	`, tableName),
		},
		tableName: tableName,
	}

	if err := indexer.ensureTable(); err != nil {
		return nil, fmt.Errorf("ensure table: %w", err)
	}

	return indexer, nil
}

// ensureTable creates the players table if it doesn't exist
func (i *PostgresIndexer) ensureTable() error {
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
			crawled_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`, i.tableName)

	_, err := i.db.Exec(query)
	return err
}
