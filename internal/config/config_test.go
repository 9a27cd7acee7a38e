package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sitectl/sitectl/internal/errors"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	s, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.SitesAvailable != "/etc/nginx/sites-available" {
		t.Errorf("SitesAvailable = %q, want default", s.SitesAvailable)
	}
	if s.SitesEnabled != "/etc/nginx/sites-enabled" {
		t.Errorf("SitesEnabled = %q, want default", s.SitesEnabled)
	}
}

func TestLoadFromOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "sites_available: /srv/nginx/avail\nemail: ops@example.com\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.SitesAvailable != "/srv/nginx/avail" {
		t.Errorf("SitesAvailable = %q, want /srv/nginx/avail", s.SitesAvailable)
	}
	if s.Email != "ops@example.com" {
		t.Errorf("Email = %q, want ops@example.com", s.Email)
	}
	// Fields absent from the file keep defaults
	if s.WebrootDir != "/var/www/letsencrypt" {
		t.Errorf("WebrootDir = %q, want default", s.WebrootDir)
	}
}

func TestLoadFromRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("sites_available: [broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestContentDir(t *testing.T) {
	s := Defaults()
	if got := s.ContentDir("example.com"); got != "/var/www/example.com" {
		t.Errorf("ContentDir = %q, want /var/www/example.com", got)
	}
}

func TestValidateDomain(t *testing.T) {
	tests := []struct {
		name    string
		domain  string
		wantErr bool
	}{
		{"simple domain", "example.com", false},
		{"subdomain", "blog.example.com", false},
		{"hyphenated label", "my-site.example.com", false},
		{"digits", "site123.example.com", false},
		{"empty", "", true},
		{"single label", "localhost", true},
		{"leading hyphen", "-bad.example.com", true},
		{"trailing hyphen", "bad-.example.com", true},
		{"underscore", "bad_site.example.com", true},
		{"space", "bad site.com", true},
		{"empty label", "bad..com", true},
		{"www prefix rejected", "www.example.com", true},
		{"label too long", makeLabel(64) + ".com", true},
		{"label at limit", makeLabel(63) + ".com", false},
		{"overall length", longDomain(260), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDomain(tt.domain)
			if tt.wantErr && err == nil {
				t.Fatalf("expected error for %q", tt.domain)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error for %q: %v", tt.domain, err)
			}
			if tt.wantErr && !errors.Is(err, errors.ErrInvalidDomain) {
				t.Errorf("error should match ErrInvalidDomain, got %v", err)
			}
		})
	}
}

func TestNewSite(t *testing.T) {
	site, err := NewSite("example.com", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if site.WWWDomain() != "www.example.com" {
		t.Errorf("WWWDomain = %q", site.WWWDomain())
	}

	if _, err := NewSite("not a domain", false); err == nil {
		t.Fatal("expected validation error")
	}
}

func makeLabel(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}

func longDomain(n int) string {
	d := ""
	for len(d) < n {
		d += makeLabel(50) + "."
	}
	return d + "com"
}
