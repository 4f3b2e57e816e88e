// Package keyring stores the database connection string in the OS secret
// store, keeping Postgres credentials out of flags, files, and history.
package keyring

import (
	"errors"
	"fmt"

	"github.com/julianstephens/weeklit/internal/constants"
	"github.com/zalando/go-keyring"
)

var (
	// ErrNotFound means no connection string has been stored yet.
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable means the OS secret store could not be reached.
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// GetConnectionString reads the stored connection string.
func GetConnectionString() (string, error) {
	connStr, err := keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return connStr, nil
}

// SetConnectionString stores or replaces the connection string.
func SetConnectionString(connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(constants.AppName, constants.DefaultKeyringUser, connStr); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// DeleteConnectionString removes the stored connection string. Returns
// ErrNotFound when nothing was stored.
func DeleteConnectionString() error {
	err := keyring.Delete(constants.AppName, constants.DefaultKeyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// IsAvailable probes the secret store with a read. A missing entry still
// counts as available; only transport or backend failures do not.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
