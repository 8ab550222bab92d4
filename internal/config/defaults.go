package config

// Default returns the baseline configuration before any file overrides.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:      "~/labnwb/raw",
			OutputDir:    "~/labnwb/nwb",
			LogDir:       "~/labnwb/logs",
			MetadataPath: "~/labnwb/metadata.yaml",
			DatabasePath: "~/labnwb/spyglass.db",
		},
		Conversion: Conversion{
			Workers:         1,
			Overwrite:       OverwriteFail,
			EpochGapSeconds: 1.0,
			SessionPattern:  "*_*",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
