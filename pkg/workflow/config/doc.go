/*
Package config provides type-safe configuration extraction from map[string]any.

config wraps a map[string]any and provides typed accessor methods that handle
missing keys and type mismatches gracefully by returning default values.
This is useful for extracting pipeline settings from YAML/JSON structures
without verbose type assertions and nil checks.

	cfg, err := config.FromFile("agent.yaml")
	if err != nil {
	    log.Fatal(err)
	}

	model := cfg.String("model", "gpt-4o-mini")
	maxRows := cfg.Int("max_results", 50)
	chunk := cfg.Int("chunk_size", 1000)

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
