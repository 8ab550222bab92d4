package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if c.Paths.DataDir == "" {
		problems = append(problems, "paths.data_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		problems = append(problems, "paths.output_dir must be set")
	}
	if c.Paths.LogDir == "" {
		problems = append(problems, "paths.log_dir must be set")
	}

	switch c.Conversion.Overwrite {
	case OverwriteFail, OverwriteReplace:
	default:
		problems = append(problems, fmt.Sprintf("conversion.overwrite must be %q or %q, got %q",
			OverwriteFail, OverwriteReplace, c.Conversion.Overwrite))
	}
	if c.Conversion.EpochGapSeconds <= 0 {
		problems = append(problems, "conversion.epoch_gap_seconds must be positive")
	}

	switch c.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be console or json, got %q", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration:\n  - " + strings.Join(problems, "\n  - "))
	}
	return nil
}
