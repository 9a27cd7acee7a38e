package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings holds host-level paths and defaults for the lifecycle controller.
// All site operations resolve directories through it, so tests can point the
// whole pipeline at temporary locations.
type Settings struct {
	// SitesAvailable is the durable store of configuration artifacts.
	SitesAvailable string `yaml:"sites_available"`
	// SitesEnabled holds activation markers referencing SitesAvailable.
	SitesEnabled string `yaml:"sites_enabled"`
	// QuarantineDir is the holding area for markers during isolation validation.
	QuarantineDir string `yaml:"quarantine_dir"`
	// StagingDir receives freshly generated artifacts before publishing.
	StagingDir string `yaml:"staging_dir"`
	// WebrootDir is the shared directory served for HTTP-01 challenges.
	WebrootDir string `yaml:"webroot_dir"`
	// ContentRoot is the parent of per-domain content directories.
	ContentRoot string `yaml:"content_root"`
	// LetsEncryptLiveDir is where the certificate authority keeps live certs.
	LetsEncryptLiveDir string `yaml:"letsencrypt_live_dir"`
	// CronDir receives the renewal schedule entry.
	CronDir string `yaml:"cron_dir"`
	// Email is the default contact address for certificate issuance.
	Email string `yaml:"email"`
}

// settingsDir is the default settings directory
const settingsDir = ".config/sitectl"
const settingsFile = "config.yaml"

// Defaults returns Settings with the standard Debian/Ubuntu nginx layout.
func Defaults() *Settings {
	return &Settings{
		SitesAvailable:     "/etc/nginx/sites-available",
		SitesEnabled:       "/etc/nginx/sites-enabled",
		QuarantineDir:      "/etc/nginx/sites-quarantine",
		StagingDir:         ".",
		WebrootDir:         "/var/www/letsencrypt",
		ContentRoot:        "/var/www",
		LetsEncryptLiveDir: "/etc/letsencrypt/live",
		CronDir:            "/etc/cron.d",
	}
}

// SettingsPath returns the settings file path
func SettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, settingsDir, settingsFile), nil
}

// Load reads the settings from disk. A missing file yields defaults.
func Load() (*Settings, error) {
	path, err := SettingsPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads settings from an explicit path. A missing file yields
// defaults; fields absent from the file keep their default values.
func LoadFrom(path string) (*Settings, error) {
	s := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	return s, nil
}

// Save writes the settings to disk, creating the directory if needed.
func (s *Settings) Save() error {
	path, err := SettingsPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	return nil
}

// ContentDir returns the content directory for a domain.
func (s *Settings) ContentDir(domain string) string {
	return filepath.Join(s.ContentRoot, domain)
}
