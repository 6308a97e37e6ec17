package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load loads and validates the configuration at path, which may be a
// config.yaml file or the directory holding one.
func Load(fsys afero.Fs, path string) (*Configuration, error) {
	if isDir, err := afero.IsDir(fsys, path); err == nil && isDir {
		path = filepath.Join(path, ConfigurationName)
	}

	configContents, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}

	// Fields missing from the file keep their default values.
	out := Default()
	if err := yaml.UnmarshalStrict(configContents, out); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// Initialize writes the default configuration into dir, creating it if
// needed. An existing configuration is left alone.
func Initialize(fsys afero.Fs, dir string, logger *log.Logger) error {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(dir, ConfigurationName)
	switch exists, err := afero.Exists(fsys, path); {
	case err != nil:
		return err
	case exists:
		logger.Printf("%s already exists, skipping\n", path)
		return nil
	}

	logger.Printf("writing %s\n", path)
	return afero.WriteFile(fsys, path, defaultConfigData, os.FileMode(0644))
}
