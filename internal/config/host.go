package config

import (
	"os"

	"github.com/deskmate-io/deskmate/internal/models"
)

// LoadHostInfo loads the host instance record from ~/.deskmate/host.yaml.
// Returns nil if the file doesn't exist.
func LoadHostInfo() (*models.HostInfo, error) {
	path, err := GlobalHostFile()
	if err != nil {
		return nil, err
	}

	if !FileExists(path) {
		return nil, nil
	}

	var info models.HostInfo
	if err := LoadYAML(path, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SaveHostInfo saves the host instance record to ~/.deskmate/host.yaml.
func SaveHostInfo(info *models.HostInfo) error {
	if err := EnsureGlobalDir(); err != nil {
		return err
	}

	path, err := GlobalHostFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, info)
}

// RemoveHostInfo removes the host.yaml file.
func RemoveHostInfo() error {
	path, err := GlobalHostFile()
	if err != nil {
		return err
	}

	if !FileExists(path) {
		return nil
	}
	return os.Remove(path)
}
