package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/good-yellow-bee/kitforge/internal/dbadmin"
	"github.com/good-yellow-bee/kitforge/internal/lifecycle"
	"github.com/good-yellow-bee/kitforge/internal/logger"
	"github.com/good-yellow-bee/kitforge/internal/metrics"
	"github.com/good-yellow-bee/kitforge/internal/remote"
	"github.com/good-yellow-bee/kitforge/internal/runner"
	"github.com/good-yellow-bee/kitforge/internal/storage"
	"github.com/good-yellow-bee/kitforge/internal/versions"
	"github.com/good-yellow-bee/kitforge/internal/workspace"
	"github.com/good-yellow-bee/kitforge/pkg/config"
)

// app holds what a single command invocation needs. It is opened at the
// start of a command and closed when the command returns.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *storage.SQLiteStorage
	metrics *metrics.Recorder
	runner  runner.Runner
}

func openApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if testMode {
		cfg.TestMode = true
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log, err := logger.Init(level, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	store, err := storage.OpenAndMigrate(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}
	log.Debug("metadata store opened", zap.String("path", store.Path()), zap.Bool("test_mode", cfg.TestMode))

	rec := metrics.NewRecorder()
	rec.SetBuildInfo(config.Version, config.Commit)

	return &app{cfg: cfg, logger: log, store: store, metrics: rec, runner: &runner.Exec{}}, nil
}

func (a *app) Close() {
	if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
		a.logger.Warn("could not write metrics", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("could not close metadata store", zap.Error(err))
	}
	logger.Sync(a.logger)
}

// withApp runs fn with an open app and always releases it.
func withApp(fn func(ctx context.Context, a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(context.Background(), a)
}

// interactive reports whether prompts may be shown.
func (a *app) interactive() bool {
	return !nonInteractive && !a.cfg.TestMode && stdinIsTerminal()
}

func (a *app) engine(interactive bool) (*lifecycle.Engine, error) {
	pg := a.cfg.Postgres
	opts := lifecycle.Options{
		Store:        a.store.Projects(),
		TemplatesDir: a.cfg.TemplatesDir,
		Provisioner:  dbadmin.New(pg),
		Resolver:     versions.NewNPMRegistry(a.cfg.Registry.URL, a.cfg.Registry.RPS, config.UserAgent(), nil),
		Logger:       a.logger,
		Metrics:      a.metrics,
		Database: lifecycle.DatabaseSettings{
			Host:     pg.Host,
			Port:     pg.Port,
			User:     pg.User,
			Password: pg.Password,
		},
	}
	if interactive {
		opts.Confirm = confirm
		opts.Choose = choose
	}
	return lifecycle.New(opts)
}

// remoteProvider selects the hosted repository provider.
func (a *app) remoteProvider() (remote.Provider, error) {
	return remote.Select(remote.Options{
		Token:     a.cfg.GitHub.Token,
		APIURL:    a.cfg.GitHub.APIURL,
		UserAgent: config.UserAgent(),
		Runner:    a.runner,
		Logger:    a.logger,
	})
}

func (a *app) orchestrator(provider remote.Provider) (*workspace.Orchestrator, error) {
	engine, err := a.engine(false)
	if err != nil {
		return nil, err
	}
	return workspace.New(workspace.Options{
		Store:         a.store.Workspaces(),
		Projects:      engine,
		Runner:        a.runner,
		Remote:        provider,
		DefaultBranch: a.cfg.Git.DefaultBranch,
		Logger:        a.logger,
		Metrics:       a.metrics,
	})
}

// targetDir returns dir, or the configured default when empty.
func (a *app) targetDir(dir string) string {
	if dir != "" {
		return dir
	}
	return a.cfg.DefaultDir
}
