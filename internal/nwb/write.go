package nwb

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"labnwb/internal/services"
)

// Write validates and persists the container. The file is written to a
// temp path in the destination directory and renamed into place, so a
// failure partway through never leaves a readable-but-incomplete
// container. When overwrite is false an existing file is a conflict.
func (f *File) Write(path string, overwrite bool) error {
	if err := f.Validate(); err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		if !overwrite {
			return services.Wrap(services.ErrConflict, "nwb", "write",
				fmt.Sprintf("output container already exists at %s", path), nil)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat output container: %w", err)
	}

	payload, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode container: %w", err)
	}
	payload = append(payload, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp container: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write container: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync container: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close container: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("publish container: %w", err)
	}
	tmpPath = ""
	return nil
}

// Read loads a previously written container.
func Read(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrMissingInput, "nwb", "read", path, err)
	}
	var file File
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, services.Wrap(services.ErrCorruptInput, "nwb", "decode", path, err)
	}
	return &file, nil
}
