package cli

import (
	"os"

	"github.com/sitectl/sitectl/internal/config"
	"github.com/sitectl/sitectl/internal/errors"
	"github.com/sitectl/sitectl/internal/executor"
	"github.com/sitectl/sitectl/internal/health"
	"github.com/sitectl/sitectl/internal/input"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	SettingsLoader SettingsLoader
	Executor       executor.CommandExecutor
	RootChecker    RootChecker
	StdinReader    input.Reader
	Resolver       health.DNSResolver
	HTTPClient     health.HTTPDoer
}

// SettingsLoader handles settings loading
type SettingsLoader interface {
	Load() (*config.Settings, error)
}

// RootChecker checks root privileges
type RootChecker interface {
	RequireRoot() error
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	SettingsLoader: &realSettingsLoader{},
	Executor:       executor.NewSystemExecutor(),
	RootChecker:    &realRootChecker{},
	StdinReader:    input.NewStdinReader(),
	Resolver:       nil,
	HTTPClient:     nil,
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

// Real implementations that delegate to existing functions

type realSettingsLoader struct{}

func (r *realSettingsLoader) Load() (*config.Settings, error) {
	return config.Load()
}

type realRootChecker struct{}

func (r *realRootChecker) RequireRoot() error {
	if os.Geteuid() != 0 {
		return errors.ErrRootRequired
	}
	return nil
}
