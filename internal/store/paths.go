package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DatabaseFile is the archive's file name inside the global directory.
const DatabaseFile = "runs.db"

// GlobalRecsimPath returns the path to the global .recsim directory.
// On Unix: ~/.recsim
// On Windows: %USERPROFILE%\.recsim
func GlobalRecsimPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".recsim"), nil
}

// DefaultDatabasePath returns ~/.recsim/runs.db.
func DefaultDatabasePath() (string, error) {
	dir, err := GlobalRecsimPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DatabaseFile), nil
}
