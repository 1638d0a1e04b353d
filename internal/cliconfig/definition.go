package cliconfig

import (
	"fmt"

	"github.com/bft-labs/trails/pkg/config"
	"github.com/bft-labs/trails/pkg/trailpack"
	"github.com/bft-labs/trails/pkg/trails"
)

// LoadDefinition reads an application definition from a TOML or YAML file.
// The file has three top-level tables:
//
//	[pkg]                       # name, version, description, anything else
//	name = "shop"
//
//	[api]                       # free-form
//
//	[config.main]
//	packs = ["configwatcher"]   # names resolved through the CLI catalog
//
// A missing pkg or api table is left nil so trails.New reports it.
func LoadDefinition(path string) (*trails.Definition, error) {
	tree, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load definition: %w", err)
	}

	def := &trails.Definition{}
	if raw, ok := tree["pkg"]; ok {
		var pkg trailpack.Pkg
		if err := config.Decode(raw, &pkg); err != nil {
			return nil, fmt.Errorf("decode pkg: %w", err)
		}
		def.Pkg = &pkg
	}
	if raw, ok := tree["api"]; ok {
		api, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("api must be a table, got %T", raw)
		}
		def.API = api
	}
	if raw, ok := tree["config"]; ok {
		cfg, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("config must be a table, got %T", raw)
		}
		def.Config = cfg
	}
	return def, nil
}
