package indexer

import (
	"context"

	"github.com/project-tktt/pl-crawler/internal/domain"
)

// Indexer defines the interface for player indexing backends
type Indexer interface {
	// BulkIndex indexes multiple players at once
	BulkIndex(ctx context.Context, players []*domain.Player) error
}
