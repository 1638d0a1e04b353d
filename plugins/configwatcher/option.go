package configwatcher

import "github.com/bft-labs/trails/pkg/trailpack"

// Factory creates a config watcher for one application. Use it in
// main.packs:
//
//	"packs": []trailpack.Factory{configwatcher.Factory}
func Factory() trailpack.Trailpack {
	return New()
}

// Register adds the config watcher to catalog under its name so
// definition files can list it as "configwatcher".
func Register(catalog trailpack.Catalog) {
	catalog[Name] = Factory
}
