package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/polkabooks/polka-server/internal/api"
	"github.com/polkabooks/polka-server/internal/catalog"
	"github.com/polkabooks/polka-server/internal/config"
	"github.com/polkabooks/polka-server/internal/logger"
	"github.com/polkabooks/polka-server/internal/media/covers"
	"github.com/polkabooks/polka-server/internal/ratelimit"
	"github.com/polkabooks/polka-server/internal/service"
)

// Login attempt budget per client IP. Tuned for humans mistyping passwords,
// not for credential stuffing at scale.
const (
	loginRatePerSecond = 1
	loginBurst         = 5
)

// ProvideCoverResolver provides the cover image resolver.
func ProvideCoverResolver(i do.Injector) (*covers.Resolver, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return covers.NewResolver(cfg.Catalog.CoverDir), nil
}

// LoginLimiterHandle wraps the per-IP login rate limiter with Shutdownable.
type LoginLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *LoginLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideLoginLimiter provides the rate limiter guarding register and login.
func ProvideLoginLimiter(i do.Injector) (*LoginLimiterHandle, error) {
	return &LoginLimiterHandle{KeyedRateLimiter: ratelimit.New(loginRatePerSecond, loginBurst)}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	authService := do.MustInvoke[*service.AuthService](i)
	discoveryService := do.MustInvoke[*service.DiscoveryService](i)
	reviewService := do.MustInvoke[*service.ReviewService](i)
	listService := do.MustInvoke[*service.ListService](i)
	recommendService := do.MustInvoke[*service.RecommendationService](i)
	coverResolver := do.MustInvoke[*covers.Resolver](i)
	limiterHandle := do.MustInvoke[*LoginLimiterHandle](i)

	handler := api.NewServer(
		authService,
		discoveryService,
		reviewService,
		listService,
		recommendService,
		coverResolver,
		limiterHandle.KeyedRateLimiter,
		log.Logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "name", cfg.Server.Name)

	return &HTTPServerHandle{Server: srv}, nil
}

// CatalogWatcherHandle wraps the catalog file watcher with Shutdownable.
type CatalogWatcherHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *CatalogWatcherHandle) Shutdown() error {
	if h.cancel == nil {
		return nil
	}
	h.cancel()
	<-h.done
	return nil
}

// ProvideCatalogWatcher provides the background watcher that reloads the
// catalog file on change and swaps it into the dependent services.
func ProvideCatalogWatcher(i do.Injector) (*CatalogWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Catalog.Watch || cfg.Catalog.Path == "" {
		log.Info("Catalog watching disabled")
		return &CatalogWatcherHandle{}, nil
	}

	discovery := do.MustInvoke[*service.DiscoveryService](i)
	recommend := do.MustInvoke[*service.RecommendationService](i)

	watcher := catalog.NewWatcher(catalog.Options{
		Path:     cfg.Catalog.Path,
		CoverDir: cfg.Catalog.CoverDir,
		Logger:   log.Logger,
	}, func(cat *catalog.Catalog) {
		if err := discovery.Reload(cat); err != nil {
			log.Error("Catalog reload failed", "error", err)
			return
		}
		recommend.Reload(cat)
		log.Info("Catalog reloaded", "books", cat.Len())
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := watcher.Run(ctx); err != nil {
			log.Error("Catalog watcher stopped", "error", err)
		}
	}()

	log.Info("Catalog watcher started", "path", cfg.Catalog.Path)

	return &CatalogWatcherHandle{cancel: cancel, done: done}, nil
}
