package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	pathFields := []*string{
		&c.Paths.DataDir,
		&c.Paths.OutputDir,
		&c.Paths.LogDir,
		&c.Paths.MetadataPath,
		&c.Paths.DatabasePath,
	}
	for _, field := range pathFields {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	if c.Conversion.Workers < 1 {
		c.Conversion.Workers = 1
	}
	c.Conversion.Overwrite = strings.ToLower(strings.TrimSpace(c.Conversion.Overwrite))
	if c.Conversion.Overwrite == "" {
		c.Conversion.Overwrite = OverwriteFail
	}
	if c.Conversion.SessionPattern == "" {
		c.Conversion.SessionPattern = "*_*"
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	return nil
}

// ExpandPath resolves ~ and relative paths to absolute paths.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", trimmed, err)
	}
	return abs, nil
}
