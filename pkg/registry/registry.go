// Package registry holds the per-category ordered lists of capability
// providers declared in configuration. The registry is read-only after load
// and safe to share across concurrent invocations without locking.
package registry

import (
	"fmt"

	"github.com/optics-dev/optics-runner/pkg/config"
	"github.com/optics-dev/optics-runner/pkg/core"
)

// Registry maps each capability category to its priority-ordered provider
// candidates. Disabled entries are retained (skipped at selection), so the
// registry always reflects the declared configuration.
type Registry struct {
	categories map[core.Category][]core.ProviderConfig
}

// FromConfig builds a registry from the dependency lists in cfg, preserving
// declaration order within each category.
func FromConfig(cfg *config.Config) *Registry {
	r := &Registry{categories: make(map[core.Category][]core.ProviderConfig)}
	for _, category := range core.Categories() {
		list := cfg.Dependencies(category.String())
		providers := make([]core.ProviderConfig, 0, len(list))
		for _, entry := range list {
			for name, dep := range entry {
				providers = append(providers, core.ProviderConfig{
					Name:         name,
					Enabled:      dep.Enabled,
					URL:          dep.URL,
					Capabilities: dep.Capabilities,
				})
			}
		}
		r.categories[category] = providers
	}
	return r
}

// Providers returns all candidates for the category in priority order,
// including disabled entries.
func (r *Registry) Providers(category core.Category) []core.ProviderConfig {
	return r.categories[category]
}

// Enabled returns only the enabled candidates for the category, in priority
// order.
func (r *Registry) Enabled(category core.Category) []core.ProviderConfig {
	var enabled []core.ProviderConfig
	for _, p := range r.categories[category] {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}
	return enabled
}

// Lookup returns the named candidate within a category.
func (r *Registry) Lookup(category core.Category, name string) (core.ProviderConfig, bool) {
	for _, p := range r.categories[category] {
		if p.Name == name {
			return p, true
		}
	}
	return core.ProviderConfig{}, false
}

// Validate checks that every category the run needs has at least one enabled
// candidate. Categories in optional are allowed to be empty.
func (r *Registry) Validate(required ...core.Category) error {
	for _, category := range required {
		if len(r.Enabled(category)) == 0 {
			return fmt.Errorf("no enabled providers for %s", category)
		}
	}
	return nil
}
