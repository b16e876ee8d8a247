package store

import (
	"context"
	"fmt"
	"log"
	"strings"

	"regbot/db"
	"regbot/model"
)

// Backend names accepted in store.backend and store.mirror.
const (
	BackendCSV    = "csv"
	BackendSheets = "sheets"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Open builds the configured primary backend. When mirrors are configured the
// result is a Mirror that also writes to each of them.
func Open(ctx context.Context, cfg model.StoreConfig) (Store, error) {
	primaryName := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if primaryName == "" {
		primaryName = BackendCSV
	}
	primary, err := openBackend(ctx, primaryName, cfg)
	if err != nil {
		return nil, err
	}
	if len(cfg.Mirror) == 0 {
		log.Printf("[store] using %s backend", primaryName)
		return primary, nil
	}

	var secondaries []Named
	for _, name := range cfg.Mirror {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || name == primaryName {
			continue
		}
		sec, err := openBackend(ctx, name, cfg)
		if err != nil {
			primary.Close()
			for _, opened := range secondaries {
				opened.Store.Close()
			}
			return nil, fmt.Errorf("mirror: %w", err)
		}
		secondaries = append(secondaries, Named{Name: name, Store: sec})
	}
	log.Printf("[store] using %s backend with %d mirror(s)", primaryName, len(secondaries))
	return NewMirror(Named{Name: primaryName, Store: primary}, secondaries...), nil
}

func openBackend(ctx context.Context, name string, cfg model.StoreConfig) (Store, error) {
	switch name {
	case BackendCSV:
		if cfg.CSV.Path == "" {
			return nil, fmt.Errorf("csv store: path is required")
		}
		return NewCSVStore(cfg.CSV.Path), nil
	case BackendSheets:
		return NewSheetsStore(ctx, cfg.Sheets)
	case BackendSQLite:
		if cfg.SQLite.Path == "" {
			return nil, fmt.Errorf("sqlite store: path is required")
		}
		return db.Open(cfg.SQLite.Path)
	case BackendRedis:
		return NewRedisStore(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown store backend %q", name)
	}
}
