package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// FlyManifest holds the fly.toml fields deployctl cares about.
type FlyManifest struct {
	App           string `toml:"app"`
	PrimaryRegion string `toml:"primary_region"`
}

// ReadFlyToml parses the manifest at path. It returns nil, nil when the file
// does not exist.
func ReadFlyToml(fsys afero.Fs, path string) (*FlyManifest, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var manifest FlyManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &manifest, nil
}
