package storage

import (
	"net/url"
	"strings"
)

// HasEmbeddedCredentials reports whether a PostgreSQL connection string
// carries a password inline. Passwords belong in the OS keyring, the
// environment, or .pgpass, never in the config value itself.
func HasEmbeddedCredentials(connStr string) bool {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil {
			// Unparseable strings are treated as suspect
			return true
		}
		if u.User != nil {
			if _, hasPassword := u.User.Password(); hasPassword {
				return true
			}
		}
		return false
	}

	// DSN format: space-separated key=value pairs
	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "password") {
			return true
		}
	}
	return false
}
