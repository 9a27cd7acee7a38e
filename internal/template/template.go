// Package template renders nginx site configurations from embedded Go
// templates.
//
// Four mutually exclusive templates exist, selected by the site's www
// redirect option and whether a certificate is available:
//
//	nginx/http-canonical.tmpl       no www redirect, HTTP only
//	nginx/http-www-redirect.tmpl    www redirect, HTTP only
//	nginx/https-canonical.tmpl      no www redirect, HTTPS
//	nginx/https-www-redirect.tmpl   www redirect, HTTPS
//
// Rendering is deterministic: the same site, options and certificate flag
// always yield byte-identical output. Every HTTP listener exposes the
// ACME webroot challenge path so certificates can be issued and renewed
// without reconfiguration.
package template

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/sitectl/sitectl/internal/config"
)

//go:embed nginx/*.tmpl
var nginxTemplates embed.FS

// Data contains the values rendered into a template.
type Data struct {
	Domain   string
	Root     string
	Webroot  string
	CertPath string
	KeyPath  string
}

// Generator produces and stages configuration artifacts for sites.
type Generator struct {
	stagingDir  string
	webrootDir  string
	contentRoot string
	liveDir     string
}

// NewGenerator creates a Generator resolving paths from settings.
func NewGenerator(settings *config.Settings) *Generator {
	return &Generator{
		stagingDir:  settings.StagingDir,
		webrootDir:  settings.WebrootDir,
		contentRoot: settings.ContentRoot,
		liveDir:     settings.LetsEncryptLiveDir,
	}
}

// templateName selects one of the four templates.
func templateName(wwwRedirect, httpsAvailable bool) string {
	switch {
	case wwwRedirect && httpsAvailable:
		return "https-www-redirect"
	case wwwRedirect:
		return "http-www-redirect"
	case httpsAvailable:
		return "https-canonical"
	default:
		return "http-canonical"
	}
}

// Generate renders the configuration artifact text for a site. It is pure:
// no side effects, deterministic for identical inputs.
func (g *Generator) Generate(site config.Site, httpsAvailable bool) (string, error) {
	name := templateName(site.WWWRedirect, httpsAvailable)

	content, err := nginxTemplates.ReadFile(fmt.Sprintf("nginx/%s.tmpl", name))
	if err != nil {
		return "", fmt.Errorf("template not found: %s", name)
	}

	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	data := Data{
		Domain:   site.Domain,
		Root:     filepath.Join(g.contentRoot, site.Domain),
		Webroot:  g.webrootDir,
		CertPath: filepath.Join(g.liveDir, site.Domain, "fullchain.pem"),
		KeyPath:  filepath.Join(g.liveDir, site.Domain, "privkey.pem"),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}

	return buf.String(), nil
}

// StagedPath returns the staging location for a domain's artifact.
func (g *Generator) StagedPath(domain string) string {
	return filepath.Join(g.stagingDir, domain+".conf")
}

// Stage renders the artifact and writes it to the staging location,
// overwriting any prior staged artifact for the same domain.
func (g *Generator) Stage(site config.Site, httpsAvailable bool) (string, error) {
	content, err := g.Generate(site, httpsAvailable)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(g.stagingDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	path := g.StagedPath(site.Domain)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write staged configuration: %w", err)
	}

	return path, nil
}
