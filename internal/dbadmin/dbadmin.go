// Package dbadmin creates and drops the backing databases of data-owning projects.
package dbadmin

import (
	"context"
	"fmt"
	"regexp"
)

// Provisioner administers databases on a server.
type Provisioner interface {
	// Create creates name. An existing database is left as is.
	Create(ctx context.Context, name string) error
	// Drop removes name. A missing database is not an error.
	Drop(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidateName rejects names that are not plain SQL identifiers.
func ValidateName(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid database name %q", name)
	}
	return nil
}
