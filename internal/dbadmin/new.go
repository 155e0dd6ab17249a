package dbadmin

import (
	"github.com/good-yellow-bee/kitforge/internal/runner"
	"github.com/good-yellow-bee/kitforge/pkg/config"
)

// New picks the pgx provisioner when an admin URL is configured and the
// PostgreSQL client tools otherwise.
func New(cfg config.PostgresConfig) Provisioner {
	if cfg.AdminURL != "" {
		return NewPgx(cfg.AdminURL)
	}
	r := &runner.Exec{}
	if cfg.Password != "" {
		r.Env = []string{"PGPASSWORD=" + cfg.Password}
	}
	return NewPSQL(r, cfg.Host, cfg.Port, cfg.User)
}
