package parser

import (
	"fmt"

	"billscan/internal/config"
	"billscan/internal/port"
)

// ProviderFactory is a function that creates a PageModelClient from a provider config.
type ProviderFactory func(cfg *config.ModelProviderConfig) (port.PageModelClient, error)

// registry of model provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a model provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewClient creates a PageModelClient from a provider config using the registered factory.
func NewClient(cfg *config.ModelProviderConfig) (port.PageModelClient, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown model provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
