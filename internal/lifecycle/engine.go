// Package lifecycle creates and destroys single projects, reconciling the
// metadata store against what is actually on disk.
package lifecycle

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/good-yellow-bee/kitforge/internal/dbadmin"
	"github.com/good-yellow-bee/kitforge/internal/fsutil"
	"github.com/good-yellow-bee/kitforge/internal/metrics"
	"github.com/good-yellow-bee/kitforge/internal/storage"
	"github.com/good-yellow-bee/kitforge/internal/versions"
)

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(question string) (bool, error)

// ChooseFunc asks the user to pick one of options and returns its index.
type ChooseFunc func(question string, options []string) (int, error)

// DatabaseSettings are written into the generated env files of data-owning projects.
type DatabaseSettings struct {
	Host     string
	Port     int
	User     string
	Password string
}

// Options configure an Engine. Store and TemplatesDir are required.
type Options struct {
	Store        storage.ProjectRepository
	TemplatesDir string

	// Provisioner creates and drops backing databases. When nil, database
	// setup is skipped with a warning.
	Provisioner dbadmin.Provisioner
	// Resolver looks up latest dependency versions for --latest.
	Resolver versions.Resolver
	Logger   *zap.Logger
	Metrics  *metrics.Recorder

	// Confirm and Choose are nil when no terminal is attached.
	Confirm ConfirmFunc
	Choose  ChooseFunc

	Database   DatabaseSettings
	APIURL     string
	BcryptCost int
	Now        func() time.Time
	// RemoveTree deletes a project folder. Defaults to fsutil.RemoveTree.
	RemoveTree func(path string) error
}

// Engine runs project create and destroy operations.
type Engine struct {
	store        storage.ProjectRepository
	templatesDir string
	provisioner  dbadmin.Provisioner
	resolver     versions.Resolver
	logger       *zap.Logger
	metrics      *metrics.Recorder
	confirm      ConfirmFunc
	choose       ChooseFunc
	database     DatabaseSettings
	apiURL       string
	bcryptCost   int
	now          func() time.Time
	removeTree   func(path string) error
	creators     map[string]Creator
}

// New returns an Engine for opts.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, errors.New("lifecycle: store is required")
	}
	if opts.TemplatesDir == "" {
		return nil, errors.New("lifecycle: templates directory is required")
	}
	e := &Engine{
		store:        opts.Store,
		templatesDir: opts.TemplatesDir,
		provisioner:  opts.Provisioner,
		resolver:     opts.Resolver,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		confirm:      opts.Confirm,
		choose:       opts.Choose,
		database:     opts.Database,
		apiURL:       opts.APIURL,
		bcryptCost:   opts.BcryptCost,
		now:          opts.Now,
		removeTree:   opts.RemoveTree,
	}
	if e.removeTree == nil {
		e.removeTree = fsutil.RemoveTree
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	if e.database.Host == "" {
		e.database.Host = "localhost"
	}
	if e.database.Port == 0 {
		e.database.Port = 5432
	}
	if e.database.User == "" {
		e.database.User = "postgres"
	}
	if e.database.Password == "" {
		e.database.Password = "postgres"
	}
	if e.apiURL == "" {
		e.apiURL = "http://localhost:3000/api"
	}
	e.creators = defaultCreators()
	return e, nil
}

// Store returns the project repository the engine writes to.
func (e *Engine) Store() storage.ProjectRepository {
	return e.store
}

func (e *Engine) observe(operation, kind, outcome string, started time.Time) {
	e.metrics.ObserveOperation(operation, kind, outcome, time.Since(started))
}
