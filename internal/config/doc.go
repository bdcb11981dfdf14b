// Package config loads and validates the TOML configuration for tsumugi.
//
// Resolution order: an explicit --config path, then
// ~/.config/tsumugi/config.toml, then ./tsumugi.toml. Defaults are applied
// first, the file is decoded over them, then values are normalized (paths
// expanded, env fallbacks applied) and validated.
package config
