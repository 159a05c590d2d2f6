package postprocessors

import (
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/postprocessors/dedupe"
	"github.com/custodia-labs/rfqx/internal/postprocessors/quantity"
	"github.com/custodia-labs/rfqx/internal/postprocessors/units"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register(quantity.Name, buildQuantity)
	r.Register(units.Name, buildUnits)
	r.Register(dedupe.Name, buildDedupe)
}

// NewDefaultRegistry returns a registry with the built-in processors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

func buildQuantity(_ map[string]any) (driven.PostProcessor, error) {
	return quantity.New(), nil
}

func buildUnits(_ map[string]any) (driven.PostProcessor, error) {
	return units.New(), nil
}

// buildDedupe creates a dedupe processor from generic config.
// Supported config keys:
//   - case_sensitive (bool): Compare descriptions exactly (default: false)
func buildDedupe(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []dedupe.Option
	if cfg != nil {
		if v, ok := getBoolFromConfig(cfg, "case_sensitive"); ok {
			opts = append(opts, dedupe.WithCaseSensitive(v))
		}
	}
	return dedupe.New(opts...), nil
}

// getBoolFromConfig safely extracts a bool from generic config map.
// Handles bool values and the strings "true"/"false" that may come from
// TOML or environment parsing.
func getBoolFromConfig(cfg map[string]any, key string) (value, ok bool) {
	val, present := cfg[key]
	if !present {
		return false, false
	}

	switch v := val.(type) {
	case bool:
		return v, true
	case string:
		switch v {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}
