// Package config loads the settings of the library simulation and its seed data.
//
// Settings come from, highest priority first:
//
//  1. Environment variables prefixed with LIBRARY_, e.g. LIBRARY_LOG_LEVEL=debug
//  2. An optional config file (yaml, toml or json)
//  3. Defaults
//
// Seed data (books, users with the titles they already hold, and a scripted scenario) is read
// from a YAML or TOML file, picked by extension. Without a seed file DefaultSeed is used.
package config
