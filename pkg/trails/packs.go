package trails

import (
	"fmt"

	"github.com/bft-labs/trails/internal/domain"
	"github.com/bft-labs/trails/pkg/trailpack"
)

// PacksKey is the configuration path of the ordered trailpack list.
const PacksKey = "main.packs"

// resolvePacks turns the main.packs entry into trailpack instances.
// Entries may be factories, trailpack values, or names looked up in catalog.
func resolvePacks(v any, catalog trailpack.Catalog) ([]trailpack.Trailpack, error) {
	var entries []any
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []any:
		entries = t
	case []string:
		for _, s := range t {
			entries = append(entries, s)
		}
	case []trailpack.Factory:
		for _, f := range t {
			entries = append(entries, f)
		}
	case []trailpack.Trailpack:
		for _, p := range t {
			entries = append(entries, p)
		}
	case []func() trailpack.Trailpack:
		for _, f := range t {
			entries = append(entries, f)
		}
	default:
		return nil, &domain.PluginValidationError{Index: 0, Reason: fmt.Sprintf("%s must be a list, got %T", PacksKey, v)}
	}

	packs := make([]trailpack.Trailpack, 0, len(entries))
	for i, el := range entries {
		p, err := resolvePack(el, catalog)
		if err != nil {
			return nil, &domain.PluginValidationError{Index: i, Reason: err.Error()}
		}
		packs = append(packs, p)
	}
	return packs, nil
}

func resolvePack(el any, catalog trailpack.Catalog) (trailpack.Trailpack, error) {
	switch t := el.(type) {
	case trailpack.Factory:
		if t == nil {
			return nil, fmt.Errorf("factory is nil")
		}
		return t(), nil
	case func() trailpack.Trailpack:
		if t == nil {
			return nil, fmt.Errorf("factory is nil")
		}
		return t(), nil
	case trailpack.Trailpack:
		return t, nil
	case string:
		return catalog.Lookup(t)
	default:
		return nil, fmt.Errorf("unsupported entry of type %T", el)
	}
}
