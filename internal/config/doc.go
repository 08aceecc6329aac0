// Package config loads, normalizes, and validates mediasorter configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files (or YAML files carried over from older
// installations), and honours environment fallbacks such as TMDB_API_KEY. The
// Config type centralizes every knob the sorter and CLI need: library
// destinations, metadata provider endpoints, naming templates, and the ordered
// metainfo pattern catalog.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
// Templates and metainfo patterns are compiled by their owning packages when
// the sorter is assembled; failures there are startup-fatal as well.
package config
