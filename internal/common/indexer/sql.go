package indexer

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/project-tktt/pl-crawler/internal/domain"
)

// sqlIndexer upserts players through database/sql; dialects supply the statements
type sqlIndexer struct {
	db          *sql.DB
	name        string
	upsertQuery string
}

// BulkIndex indexes multiple players at once using a transaction
func (i *sqlIndexer) BulkIndex(ctx context.Context, players []*domain.Player) error {
	if len(players) == 0 {
		return nil
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, i.upsertQuery)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, player := range players {
		if _, err := stmt.ExecContext(ctx, playerArgs(player)...); err != nil {
			log.Printf("[%s] Error indexing player %s: %v", i.name, player.ID, err)
			continue
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Close closes the database connection
func (i *sqlIndexer) Close() error {
	return i.db.Close()
}

func playerArgs(p *domain.Player) []any {
	return []any{
		p.ID, p.Name, p.Position, p.Nationality, p.Club,
		p.Appearances, p.Source, p.SourceURL, p.CrawledAt,
	}
}
