// Package config loads, normalizes, and validates ytscribe configuration.
//
// Configuration lives in a TOML file (~/.config/ytscribe/config.toml, or
// ./ytscribe.toml for project-local setups). Load applies defaults first,
// then file values, then normalization (path expansion, trimming) and
// validation, so the rest of the program only ever sees a coherent Config.
package config
