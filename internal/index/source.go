// Package index builds the vault-wide tag index from parsed documents and
// watches the vault for changes that require a rebuild.
package index

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/tagvault/internal/storage"
)

// defaultReadConcurrency bounds parallel document reads during a rebuild.
const defaultReadConcurrency = 8

// Document is one vault file as handed to the indexer.
type Document struct {
	Path      string
	Content   string
	UpdatedAt time.Time
}

// Source enumerates every document of the vault. Implementations return
// documents in a stable order and fail as a whole if any read fails.
type Source interface {
	Documents(ctx context.Context) ([]Document, error)
}

// StoreSource reads documents from a storage.Provider.
type StoreSource struct {
	store       storage.Provider
	concurrency int
}

// NewStoreSource creates a Source over store.
func NewStoreSource(store storage.Provider) *StoreSource {
	return &StoreSource{store: store, concurrency: defaultReadConcurrency}
}

// Documents lists the vault and reads every .md file. Reads run in parallel
// but the result keeps the listing order. The first read error aborts the
// enumeration.
func (s *StoreSource) Documents(ctx context.Context) ([]Document, error) {
	metas, err := s.store.List("")
	if err != nil {
		return nil, fmt.Errorf("index: enumerate vault: %w", err)
	}

	docs := make([]Document, len(metas))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, m := range metas {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			data, err := s.store.Read(m.Path)
			if err != nil {
				return fmt.Errorf("index: read %s: %w", m.Path, err)
			}
			docs[i] = Document{Path: m.Path, Content: string(data), UpdatedAt: m.UpdatedAt}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
