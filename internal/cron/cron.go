// Package cron manages the certificate renewal schedule dropped into
// /etc/cron.d.
package cron

import (
	"os"
	"path/filepath"

	"github.com/sitectl/sitectl/internal/errors"
)

const scheduleName = "sitectl-renew"

const scheduleContent = `# Managed by sitectl. Renews certificates that are close to expiry.
SHELL=/bin/sh
PATH=/usr/local/sbin:/usr/local/bin:/sbin:/bin:/usr/sbin:/usr/bin

17 3 * * * root certbot renew --quiet --deploy-hook "systemctl reload nginx"
`

// Scheduler installs and removes the renewal cron entry.
type Scheduler struct {
	cronDir string
}

// NewScheduler creates a Scheduler writing into cronDir, normally /etc/cron.d.
func NewScheduler(cronDir string) *Scheduler {
	return &Scheduler{cronDir: cronDir}
}

// Path returns the schedule file location.
func (s *Scheduler) Path() string {
	return filepath.Join(s.cronDir, scheduleName)
}

// IsScheduled reports whether the renewal entry is installed.
func (s *Scheduler) IsScheduled() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}

// ScheduleRenewal writes the renewal entry. Writing it again is a no-op
// beyond refreshing the content.
func (s *Scheduler) ScheduleRenewal() error {
	if err := os.MkdirAll(s.cronDir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create cron directory", err)
	}
	if err := os.WriteFile(s.Path(), []byte(scheduleContent), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to write renewal schedule", err)
	}
	return nil
}

// RemoveSchedule deletes the renewal entry if present.
func (s *Scheduler) RemoveSchedule() error {
	err := os.Remove(s.Path())
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInternal, "failed to remove renewal schedule", err)
	}
	return nil
}
