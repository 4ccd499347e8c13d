package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/tagvault/internal/history"
	"github.com/starford/tagvault/internal/index"
	"github.com/starford/tagvault/internal/search"
	"github.com/starford/tagvault/internal/storage"
	"github.com/starford/tagvault/internal/tagservice"
)

// Vault is an opened vault: the serialized tag service plus the resources
// it owns.
type Vault struct {
	*tagservice.Serial

	store *storage.FS
	db    *search.DB
}

// OpenVault opens the vault described by cfg. The index is built lazily on
// first use or by Refresh. Extra options are applied after the ones derived
// from cfg.
func OpenVault(cfg *Config, logger *slog.Logger, opts ...tagservice.Option) (*Vault, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	v := &Vault{store: store}
	svcOpts := []tagservice.Option{tagservice.WithLogger(logger)}

	if cfg.Search.Enabled {
		db, err := search.Open(cfg.Search.DSN)
		if err != nil {
			return nil, fmt.Errorf("init search: %w", err)
		}
		v.db = db
		svcOpts = append(svcOpts, tagservice.WithSearcher(db))
	}

	if cfg.History.Enabled {
		repo, err := history.Open(store.Root(), history.Author{
			Name:  cfg.History.AuthorName,
			Email: cfg.History.AuthorEmail,
		})
		if err != nil {
			return nil, errors.Join(fmt.Errorf("init history: %w", err), v.Close())
		}
		svcOpts = append(svcOpts, tagservice.WithRecorder(repo))
	}

	svc := tagservice.New(index.NewStoreSource(store), store, append(svcOpts, opts...)...)
	v.Serial = tagservice.NewSerial(svc)
	return v, nil
}

// Root returns the absolute vault directory.
func (v *Vault) Root() string {
	return v.store.Root()
}

// Close releases the search mirror.
func (v *Vault) Close() error {
	if v.db == nil {
		return nil
	}
	return v.db.Close()
}
