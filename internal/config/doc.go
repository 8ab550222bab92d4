// Package config loads and validates the application configuration.
//
// Configuration lives in a TOML file (default ~/.config/labnwb/config.toml)
// with sections for directory paths, conversion behaviour, the ingest
// database, and logging. Load applies defaults, expands ~ in every path
// field, and validates the result before anything else runs. The dataset
// metadata document (subjects, electrode groups, cameras, tasks) is a
// separate YAML file handled by the metadata package; this package only
// knows where to find it.
package config
