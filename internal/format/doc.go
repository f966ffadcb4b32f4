// Package format renders command results as a table, JSON, YAML, TOML or
// CSV. Tables go through text/tabwriter; JSON uses sonic, YAML goccy/go-yaml
// and TOML go-toml/v2. TOML output wraps lists in a named array of tables,
// e.g. [[files]].
package format
