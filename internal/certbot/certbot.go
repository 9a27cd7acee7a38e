// Package certbot drives the certbot client for certificate issuance,
// inspection and removal. Issuance uses the webroot authenticator so
// nginx keeps serving while the CA validates the challenge.
package certbot

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sitectl/sitectl/internal/errors"
	"github.com/sitectl/sitectl/internal/executor"
	"github.com/sitectl/sitectl/internal/logger"
)

// Client wraps the certbot binary.
type Client struct {
	exec    executor.CommandExecutor
	liveDir string
}

// NewClient creates a Client using the system executor. liveDir is the
// let's encrypt live directory, normally /etc/letsencrypt/live.
func NewClient(liveDir string) *Client {
	return &Client{exec: executor.NewSystemExecutor(), liveDir: liveDir}
}

// NewClientWithExecutor creates a Client with a custom executor (for testing).
func NewClientWithExecutor(exec executor.CommandExecutor, liveDir string) *Client {
	return &Client{exec: exec, liveDir: liveDir}
}

// IsInstalled checks whether the certbot binary is on PATH.
func (c *Client) IsInstalled() bool {
	_, err := c.exec.LookPath("certbot")
	return err == nil
}

// CertPath returns the full chain path for a domain's certificate.
func (c *Client) CertPath(domain string) string {
	return filepath.Join(c.liveDir, domain, "fullchain.pem")
}

// KeyPath returns the private key path for a domain's certificate.
func (c *Client) KeyPath(domain string) string {
	return filepath.Join(c.liveDir, domain, "privkey.pem")
}

// HasCert reports whether both certificate and key exist for the domain.
func (c *Client) HasCert(domain string) bool {
	if _, err := os.Stat(c.CertPath(domain)); err != nil {
		return false
	}
	if _, err := os.Stat(c.KeyPath(domain)); err != nil {
		return false
	}
	return true
}

// Issue obtains a certificate for domain (and any altNames) using the
// webroot authenticator rooted at webroot. The command is bounded by ctx.
func (c *Client) Issue(ctx context.Context, domain string, altNames []string, webroot, email string) error {
	if !c.IsInstalled() {
		return errors.ToolMissing("certbot", "install it with: apt install certbot")
	}

	args := []string{
		"certonly",
		"--webroot",
		"-w", webroot,
		"-d", domain,
	}
	for _, alt := range altNames {
		args = append(args, "-d", alt)
	}
	args = append(args,
		"--non-interactive",
		"--agree-tos",
		"--no-eff-email",
	)
	if email != "" {
		args = append(args, "--email", email)
	} else {
		args = append(args, "--register-unsafely-without-email")
	}

	logger.DebugFields("running certbot", map[string]interface{}{
		"domain": domain,
		"args":   strings.Join(args, " "),
	})

	output, err := c.exec.ExecuteContext(ctx, "certbot", args...)
	if err != nil {
		if ctx.Err() != nil {
			return errors.Cancelled(domain)
		}
		return errors.IssuanceFailed(domain,
			errors.New(strings.TrimSpace(string(output))))
	}
	return nil
}

// Delete removes the certificate lineage for a domain. Missing lineages
// are not an error.
func (c *Client) Delete(domain string) error {
	if !c.HasCert(domain) {
		return nil
	}
	output, err := c.exec.Execute("certbot", "delete", "--cert-name", domain, "--non-interactive")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal,
			"failed to delete certificate for "+domain+": "+strings.TrimSpace(string(output)), err)
	}
	return nil
}

// Expiry returns the NotAfter time of the domain's leaf certificate.
func (c *Client) Expiry(domain string) (time.Time, error) {
	data, err := os.ReadFile(c.CertPath(domain))
	if err != nil {
		return time.Time{}, errors.Wrap(errors.ErrCodeInternal,
			"failed to read certificate for "+domain, err)
	}

	// The leaf is the first certificate in fullchain.pem.
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		return time.Time{}, errors.Wrap(errors.ErrCodeInternal,
			"no PEM certificate found for "+domain, nil)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return time.Time{}, errors.Wrap(errors.ErrCodeInternal,
			"failed to parse certificate for "+domain, err)
	}
	return cert.NotAfter, nil
}
