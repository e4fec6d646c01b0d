package config

import (
	"os"

	"github.com/deskmate-io/deskmate/internal/models"
)

// LoadBackendInfo loads the managed-backend record from ~/.deskmate/backend.yaml.
// Returns nil if the file doesn't exist.
func LoadBackendInfo() (*models.BackendInfo, error) {
	path, err := GlobalBackendFile()
	if err != nil {
		return nil, err
	}

	if !FileExists(path) {
		return nil, nil
	}

	var info models.BackendInfo
	if err := LoadYAML(path, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SaveBackendInfo saves the managed-backend record to ~/.deskmate/backend.yaml.
func SaveBackendInfo(info *models.BackendInfo) error {
	if err := EnsureGlobalDir(); err != nil {
		return err
	}

	path, err := GlobalBackendFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, info)
}

// RemoveBackendInfo removes the backend.yaml file.
func RemoveBackendInfo() error {
	path, err := GlobalBackendFile()
	if err != nil {
		return err
	}

	if !FileExists(path) {
		return nil
	}
	return os.Remove(path)
}
