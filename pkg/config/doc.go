// Package config holds an application's configuration tree.
//
// A Store is addressed by dotted paths ("main.paths.root") and lives in two
// states. While MUTABLE, Set, SetDefault and Merge change the tree. Freeze
// moves it to FROZEN for good: writes then fail with ErrFrozen while reads
// keep working. Reads always hand out copies of maps and slices, so a frozen
// tree cannot be changed behind the store's back.
//
// Merge is how trailpack defaults enter the tree: defaults fill gaps and
// never replace a value the application already set.
//
// LoadFile reads TOML or YAML files into the plain map form a Store is
// seeded from.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package config
