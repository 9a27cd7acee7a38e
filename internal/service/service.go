// Package service manages systemd units for the pieces sitectl depends
// on, chiefly starting nginx before certificate bootstrap.
package service

import (
	"strings"

	"github.com/sitectl/sitectl/internal/errors"
	"github.com/sitectl/sitectl/internal/executor"
)

// Manager starts and inspects systemd services.
type Manager struct {
	exec executor.CommandExecutor
}

// NewManager creates a Manager using the system executor.
func NewManager() *Manager {
	return &Manager{exec: executor.NewSystemExecutor()}
}

// NewManagerWithExecutor creates a Manager with a custom executor (for testing).
func NewManagerWithExecutor(exec executor.CommandExecutor) *Manager {
	return &Manager{exec: exec}
}

// Start starts the named service.
func (m *Manager) Start(name string) error {
	output, err := m.exec.Execute("systemctl", "start", name)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal,
			"failed to start "+name+": "+strings.TrimSpace(string(output)), err)
	}
	return nil
}

// Reload reloads the named service.
func (m *Manager) Reload(name string) error {
	output, err := m.exec.Execute("systemctl", "reload", name)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal,
			"failed to reload "+name+": "+strings.TrimSpace(string(output)), err)
	}
	return nil
}

// IsActive reports whether the named service is currently active.
func (m *Manager) IsActive(name string) bool {
	out, err := m.exec.Execute("systemctl", "is-active", name)
	return err == nil && strings.TrimSpace(string(out)) == "active"
}

// EnableOnBoot marks the named service to start at boot.
func (m *Manager) EnableOnBoot(name string) error {
	output, err := m.exec.Execute("systemctl", "enable", name)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal,
			"failed to enable "+name+": "+strings.TrimSpace(string(output)), err)
	}
	return nil
}
