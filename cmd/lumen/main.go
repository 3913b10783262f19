package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dixieflatline76/Lumen/config"
	"github.com/dixieflatline76/Lumen/pkg/api"
	"github.com/dixieflatline76/Lumen/pkg/background"
	"github.com/dixieflatline76/Lumen/pkg/favorites"
	"github.com/dixieflatline76/Lumen/pkg/provider"
	"github.com/dixieflatline76/Lumen/util"
	"github.com/dixieflatline76/Lumen/util/log"

	// Providers register themselves with the background engine.
	_ "github.com/dixieflatline76/Lumen/pkg/background/providers/peapix"
	_ "github.com/dixieflatline76/Lumen/pkg/background/providers/pexels"
	_ "github.com/dixieflatline76/Lumen/pkg/background/providers/pixabay"
	_ "github.com/dixieflatline76/Lumen/pkg/background/providers/unsplash"
)

func main() {
	cfg := config.GetConfig()
	log.Printf("%s %s starting", config.AppName, config.AppVersion)

	proxy := provider.NewProxyClient(cfg.ProxyBaseURL)
	providers := background.BuildProviders(proxy)
	log.Printf("Loaded %d image providers", len(providers))

	server := api.NewServer(cfg.ListenAddr)

	manager, err := background.NewManager(background.Deps{
		Surfaces:  background.NewSurfacePair(),
		Overlay:   &background.Overlay{},
		Renderer:  server,
		Store:     server,
		Providers: providers,
		Favorites: favorites.NewClient(cfg.FavoritesURL, nil),
		Client:    proxy.HTTPClient(),
	})
	if err != nil {
		log.Fatalf("Engine setup failed: %v", err)
	}
	server.SetManager(manager)

	go func() {
		result, err := util.CheckForUpdates()
		if err != nil {
			log.Debugf("Update check failed: %v", err)
			return
		}
		if result.UpdateAvailable {
			log.Printf("A newer release is available: %s (%s)", result.LatestVersion, result.ReleaseURL)
		}
	}()

	go func() {
		log.Printf("Listening on %s", cfg.ListenAddr)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Printf("Shutting down")
	manager.Close()
	if err := server.Stop(); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}
