package extractor

import (
	"fmt"

	"invodex/internal/config"
	"invodex/internal/port"
)

// ProviderFactory is a function that creates an InvoiceExtractor from a provider config.
type ProviderFactory func(cfg *config.ExtractorProviderConfig) (port.InvoiceExtractor, error)

// registry of extraction provider factories, populated by init() in each
// provider package or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an extraction provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewExtractor creates an InvoiceExtractor from a provider config using the
// registered factory.
func NewExtractor(cfg *config.ExtractorProviderConfig) (port.InvoiceExtractor, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown extraction provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewFromConfig builds the extraction chain described by the config: the
// primary provider alone, or primary plus secondary behind a fallback when a
// secondary is configured.
func NewFromConfig(cfg *config.ExtractorConfig) (port.InvoiceExtractor, error) {
	primaryCfg := cfg.PrimaryConfig()
	primary, err := NewExtractor(primaryCfg)
	if err != nil {
		return nil, fmt.Errorf("building primary extractor: %w", err)
	}

	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}

	secondary, err := NewExtractor(secondaryCfg)
	if err != nil {
		return nil, fmt.Errorf("building secondary extractor: %w", err)
	}
	return NewFallbackExtractor(
		[]port.InvoiceExtractor{primary, secondary},
		[]string{primaryCfg.Provider, secondaryCfg.Provider},
	), nil
}
