package background

import (
	"github.com/dixieflatline76/Lumen/pkg/provider"
)

// ProviderFactory defines the function signature for creating a provider.
type ProviderFactory func(client *provider.ProxyClient) provider.Provider

var providerRegistry = make(map[string]ProviderFactory)

// RegisterProvider registers a new image provider factory.
func RegisterProvider(name string, factory ProviderFactory) {
	providerRegistry[name] = factory
}

// GetRegisteredProviders returns all registered provider factories.
func GetRegisteredProviders() map[string]ProviderFactory {
	return providerRegistry
}

// BuildProviders instantiates every registered provider against the given
// proxy client.
func BuildProviders(client *provider.ProxyClient) map[string]provider.Provider {
	providers := make(map[string]provider.Provider, len(providerRegistry))
	for name, factory := range providerRegistry {
		providers[name] = factory(client)
	}
	return providers
}
