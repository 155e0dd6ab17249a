package dbadmin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/good-yellow-bee/kitforge/internal/runner"
	apperrors "github.com/good-yellow-bee/kitforge/pkg/errors"
)

// PSQL administers databases through the PostgreSQL client tools.
type PSQL struct {
	runner runner.Runner
	host   string
	port   int
	user   string
}

// NewPSQL returns a PSQL provisioner. The password, if any, is expected to be
// present in the runner's environment as PGPASSWORD.
func NewPSQL(r runner.Runner, host string, port int, user string) *PSQL {
	return &PSQL{runner: r, host: host, port: port, user: user}
}

func (p *PSQL) connArgs() []string {
	return []string{"-h", p.host, "-p", strconv.Itoa(p.port), "-U", p.user}
}

func (p *PSQL) available() error {
	if _, err := p.runner.LookPath("psql"); err != nil {
		return apperrors.Wrap(err, apperrors.CodeExternalToolUnavailable, "psql is not installed")
	}
	return nil
}

// Exists queries pg_database for name.
func (p *PSQL) Exists(ctx context.Context, name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}
	if err := p.available(); err != nil {
		return false, err
	}
	args := append(p.connArgs(), "-d", "postgres", "-tAc",
		fmt.Sprintf("SELECT 1 FROM pg_database WHERE datname = '%s'", name))
	out, err := p.runner.Run(ctx, "", "psql", args...)
	if err != nil {
		return false, fmt.Errorf("check database %s: %w", name, err)
	}
	return strings.TrimSpace(out) == "1", nil
}

// Create runs createdb unless name already exists.
func (p *PSQL) Create(ctx context.Context, name string) error {
	exists, err := p.Exists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if _, err := p.runner.Run(ctx, "", "createdb", append(p.connArgs(), name)...); err != nil {
		return fmt.Errorf("create database %s: %w", name, err)
	}
	return nil
}

// Drop runs dropdb --if-exists.
func (p *PSQL) Drop(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := p.available(); err != nil {
		return err
	}
	args := append([]string{"--if-exists"}, p.connArgs()...)
	if _, err := p.runner.Run(ctx, "", "dropdb", append(args, name)...); err != nil {
		return fmt.Errorf("drop database %s: %w", name, err)
	}
	return nil
}
