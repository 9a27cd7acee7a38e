// Package registry is the filesystem-backed source of truth for site
// configurations.
//
// An artifact moves through three locations: staged (working copy written
// by the generator), available (durable store, one file per domain) and
// enabled (activation markers, symlinks referencing the available store).
// An enabled marker never exists without its available entry; Activate
// enforces the ordering.
//
// The registry also owns the quarantine holding area used during isolation
// validation. Markers moved there must always come back; leftovers from an
// interrupted run are restored by ReconcileHoldingArea before any new
// activation proceeds.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sitectl/sitectl/internal/config"
	"github.com/sitectl/sitectl/internal/errors"
)

// Registry manages the staged, available and enabled locations for one host.
type Registry struct {
	stagingDir    string
	availableDir  string
	enabledDir    string
	quarantineDir string
}

// New creates a Registry resolving directories from settings.
func New(settings *config.Settings) *Registry {
	return &Registry{
		stagingDir:    settings.StagingDir,
		availableDir:  settings.SitesAvailable,
		enabledDir:    settings.SitesEnabled,
		quarantineDir: settings.QuarantineDir,
	}
}

// StagedPath returns the staged artifact location for a domain.
func (r *Registry) StagedPath(domain string) string {
	return filepath.Join(r.stagingDir, domain+".conf")
}

// AvailablePath returns the available store entry for a domain.
func (r *Registry) AvailablePath(domain string) string {
	return filepath.Join(r.availableDir, domain)
}

// EnabledPath returns the activation marker location for a domain.
func (r *Registry) EnabledPath(domain string) string {
	return filepath.Join(r.enabledDir, domain)
}

// IsStaged reports whether a staged artifact exists for the domain.
func (r *Registry) IsStaged(domain string) bool {
	_, err := os.Stat(r.StagedPath(domain))
	return err == nil
}

// IsPublished reports whether an available entry exists for the domain.
func (r *Registry) IsPublished(domain string) bool {
	_, err := os.Stat(r.AvailablePath(domain))
	return err == nil
}

// IsActive reports whether an activation marker exists for the domain.
func (r *Registry) IsActive(domain string) bool {
	_, err := os.Lstat(r.EnabledPath(domain))
	return err == nil
}

// Publish copies the staged artifact into the available store, creating the
// store if absent. Fails with NotStaged if no staged artifact exists.
func (r *Registry) Publish(domain string) error {
	data, err := os.ReadFile(r.StagedPath(domain))
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NotStaged(domain)
		}
		return fmt.Errorf("failed to read staged configuration: %w", err)
	}

	if err := os.MkdirAll(r.availableDir, 0755); err != nil {
		return fmt.Errorf("failed to create sites-available directory: %w", err)
	}

	if err := os.WriteFile(r.AvailablePath(domain), data, 0644); err != nil {
		return fmt.Errorf("failed to publish configuration: %w", err)
	}

	return nil
}

// Activate creates or replaces the activation marker for the domain. Any
// leftover quarantined markers from an interrupted run are restored first.
// Fails with NotPublished if no available entry exists. Re-activation is
// idempotent: a stale marker is removed before the new one is created.
func (r *Registry) Activate(domain string) error {
	if err := r.ReconcileHoldingArea(); err != nil {
		return err
	}

	if !r.IsPublished(domain) {
		return errors.NotPublished(domain)
	}

	if err := os.MkdirAll(r.enabledDir, 0755); err != nil {
		return fmt.Errorf("failed to create sites-enabled directory: %w", err)
	}

	marker := r.EnabledPath(domain)
	if err := os.Remove(marker); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale marker: %w", err)
	}

	if err := os.Symlink(r.AvailablePath(domain), marker); err != nil {
		return fmt.Errorf("failed to activate site: %w", err)
	}

	return nil
}

// Deactivate removes the activation marker if present; no-op otherwise.
func (r *Registry) Deactivate(domain string) error {
	marker := r.EnabledPath(domain)

	info, err := os.Lstat(marker)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check activation marker: %w", err)
	}

	if info.Mode()&os.ModeSymlink == 0 {
		return fmt.Errorf("marker for %s is not a symlink, refusing to remove", domain)
	}

	if err := os.Remove(marker); err != nil {
		return fmt.Errorf("failed to deactivate site: %w", err)
	}

	return nil
}

// RemovePublished deletes the available entry if present; no-op otherwise.
func (r *Registry) RemovePublished(domain string) error {
	if err := os.Remove(r.AvailablePath(domain)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove available entry: %w", err)
	}
	return nil
}

// RemoveStaged deletes the staged artifact if present; no-op otherwise.
func (r *Registry) RemoveStaged(domain string) error {
	if err := os.Remove(r.StagedPath(domain)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove staged artifact: %w", err)
	}
	return nil
}

// EnabledDomains returns the sorted set of domains with activation markers,
// including sites not managed by this invocation.
func (r *Registry) EnabledDomains() ([]string, error) {
	entries, err := os.ReadDir(r.enabledDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read sites-enabled: %w", err)
	}

	domains := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		domains = append(domains, entry.Name())
	}
	sort.Strings(domains)
	return domains, nil
}

// QuarantineOthers moves every activation marker except the given domain's
// into the holding area and returns exactly what was moved. On a partial
// failure the markers moved so far are returned alongside the error so the
// caller can restore them.
func (r *Registry) QuarantineOthers(domain string) ([]string, error) {
	siblings, err := r.EnabledDomains()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(r.quarantineDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create quarantine directory: %w", err)
	}

	moved := make([]string, 0, len(siblings))
	for _, name := range siblings {
		if name == domain {
			continue
		}
		if err := os.Rename(r.EnabledPath(name), filepath.Join(r.quarantineDir, name)); err != nil {
			return moved, fmt.Errorf("failed to quarantine %s: %w", name, err)
		}
		moved = append(moved, name)
	}

	return moved, nil
}

// RestoreQuarantined moves the named markers from the holding area back to
// the enabled set. Every marker is attempted; any failure yields a fatal
// quarantine-restore error listing what could not be moved back.
func (r *Registry) RestoreQuarantined(names []string) error {
	var failed []string
	var firstErr error

	for _, name := range names {
		if err := os.Rename(filepath.Join(r.quarantineDir, name), r.EnabledPath(name)); err != nil {
			failed = append(failed, name)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if len(failed) > 0 {
		return errors.QuarantineRestore(fmt.Errorf("could not restore %s: %w", strings.Join(failed, ", "), firstErr))
	}

	return nil
}

// ReconcileHoldingArea restores any markers left in the holding area by an
// interrupted run. An empty or missing holding area is a no-op; a marker
// that cannot be restored is a fatal quarantine-restore error.
func (r *Registry) ReconcileHoldingArea() error {
	entries, err := os.ReadDir(r.quarantineDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read quarantine directory: %w", err)
	}

	if len(entries) == 0 {
		return nil
	}

	leftovers := make([]string, 0, len(entries))
	for _, entry := range entries {
		leftovers = append(leftovers, entry.Name())
	}

	if err := os.MkdirAll(r.enabledDir, 0755); err != nil {
		return fmt.Errorf("failed to create sites-enabled directory: %w", err)
	}

	return r.RestoreQuarantined(leftovers)
}
