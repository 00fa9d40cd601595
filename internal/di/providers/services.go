package providers

import (
	"github.com/samber/do/v2"

	"github.com/polkabooks/polka-server/internal/auth"
	"github.com/polkabooks/polka-server/internal/catalog"
	"github.com/polkabooks/polka-server/internal/logger"
	"github.com/polkabooks/polka-server/internal/service"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, log.Logger), nil
}

// ProvideDiscoveryService provides the catalog browsing, filtering and search
// service. Constructing it builds the filter hierarchy and fills the search
// index.
func ProvideDiscoveryService(i do.Injector) (*service.DiscoveryService, error) {
	cat := do.MustInvoke[*catalog.Catalog](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc, err := service.NewDiscoveryService(cat, indexHandle.Index, log.Logger)
	if err != nil {
		return nil, err
	}

	docCount, _ := indexHandle.DocumentCount()
	log.Info("Discovery service ready", "indexed_books", docCount)

	return svc, nil
}

// ProvideReviewService provides the book review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	discovery := do.MustInvoke[*service.DiscoveryService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReviewService(storeHandle.Store, discovery, log.Logger), nil
}

// ProvideListService provides the reading list service.
func ProvideListService(i do.Injector) (*service.ListService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	discovery := do.MustInvoke[*service.DiscoveryService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewListService(storeHandle.Store, discovery, log.Logger), nil
}

// ProvideRecommendationService provides the personalized recommendation
// service.
func ProvideRecommendationService(i do.Injector) (*service.RecommendationService, error) {
	cat := do.MustInvoke[*catalog.Catalog](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecommendationService(cat, storeHandle.Store, log.Logger), nil
}
