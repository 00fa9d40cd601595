package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/polkabooks/polka-server/internal/catalog"
	"github.com/polkabooks/polka-server/internal/config"
	"github.com/polkabooks/polka-server/internal/logger"
	"github.com/polkabooks/polka-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "db")
	db, err := store.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// SeedDemoReviewsIfNeeded fills an empty review space with the canned demo
// reviews for every catalog book. Should be called after all services are
// wired.
func SeedDemoReviewsIfNeeded(i do.Injector) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cat := do.MustInvoke[*catalog.Catalog](i)
	log := do.MustInvoke[*logger.Logger](i)

	books := cat.List()
	ids := make([]int64, 0, len(books))
	for _, book := range books {
		ids = append(ids, book.ID)
	}

	if err := storeHandle.SeedDemoReviews(context.Background(), ids); err != nil {
		log.Error("Demo review seeding failed", "error", err)
	}
}
