// Package paths fills in the application's default directories and
// creates them before the trailpacks run.
package paths

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"github.com/spf13/cast"

	"github.com/bft-labs/trails/pkg/config"
	"github.com/bft-labs/trails/pkg/log"
)

// Key is the configuration subtree holding named directories.
const Key = "main.paths"

const dirPerm = 0o755

// Defaults fills the standard directories that are not already set.
// A relative root is resolved against cwd:
//
//	main.paths.root    = cwd
//	main.paths.temp    = <root>/.tmp
//	main.paths.logs    = <temp>/log
//	main.paths.sockets = <temp>/sockets
func Defaults(store *config.Store, cwd string) error {
	root, err := setDefault(store, "root", cwd, cwd)
	if err != nil {
		return err
	}
	if store.GetString(Key+".root") != root {
		if err := store.Set(Key+".root", root); err != nil {
			return err
		}
	}
	temp, err := setDefault(store, "temp", filepath.Join(root, ".tmp"), cwd)
	if err != nil {
		return err
	}
	if _, err := setDefault(store, "logs", filepath.Join(temp, "log"), cwd); err != nil {
		return err
	}
	if _, err := setDefault(store, "sockets", filepath.Join(temp, "sockets"), cwd); err != nil {
		return err
	}
	return nil
}

// setDefault sets main.paths.<name> when absent, and returns the effective
// absolute value.
func setDefault(store *config.Store, name, value, cwd string) (string, error) {
	path := Key + "." + name
	if existing, ok := store.Lookup(path); ok {
		s, err := cast.ToStringE(existing)
		if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		return abs(s, cwd), nil
	}
	if _, err := store.SetDefault(path, value); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return value, nil
}

func abs(p, cwd string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cwd, p)
}

// Ensure creates every directory listed under main.paths on fs.
// Relative entries are created relative to main.paths.root.
// Entries are created in name order; non-string entries are rejected.
func Ensure(fs afero.Fs, store *config.Store, logger log.Logger) error {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	dirs := store.GetStringMap(Key)
	root := cast.ToString(dirs["root"])

	names := make([]string, 0, len(dirs))
	for name := range dirs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dir, err := cast.ToStringE(dirs[name])
		if err != nil {
			return fmt.Errorf("%s.%s: %w", Key, name, err)
		}
		if dir == "" {
			continue
		}
		if root != "" && name != "root" {
			dir = abs(dir, root)
		}
		if err := fs.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("create %s directory %s: %w", name, dir, err)
		}
		logger.Debug("directory ready", log.String("name", name), log.String("path", dir))
	}
	return nil
}
