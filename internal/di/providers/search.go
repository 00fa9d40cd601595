package providers

import (
	"github.com/samber/do/v2"

	"github.com/polkabooks/polka-server/internal/catalog"
	"github.com/polkabooks/polka-server/internal/config"
	"github.com/polkabooks/polka-server/internal/logger"
	"github.com/polkabooks/polka-server/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index. The index starts empty;
// DiscoveryService fills it from the catalog on construction.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.New(log.Logger)
	if err != nil {
		return nil, err
	}

	return &SearchIndexHandle{Index: index}, nil
}

// ProvideCatalog provides the book catalog, loaded from the configured JSON
// file or the embedded seed.
func ProvideCatalog(i do.Injector) (*catalog.Catalog, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	cat, err := catalog.Load(catalog.Options{
		Path:     cfg.Catalog.Path,
		CoverDir: cfg.Catalog.CoverDir,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	source := cfg.Catalog.Path
	if source == "" {
		source = "embedded"
	}
	log.Info("Catalog loaded", "books", cat.Len(), "source", source)

	return cat, nil
}
