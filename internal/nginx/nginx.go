// Package nginx wraps the web server collaborator: configuration
// self-checks, reloads and liveness probing, all driven through the
// executor so tests never touch a real nginx.
package nginx

import (
	"strings"

	"github.com/sitectl/sitectl/internal/errors"
	"github.com/sitectl/sitectl/internal/executor"
)

// Server drives the nginx process on this host.
type Server struct {
	exec executor.CommandExecutor
}

// NewServer creates a Server using the system executor.
func NewServer() *Server {
	return &Server{exec: executor.NewSystemExecutor()}
}

// NewServerWithExecutor creates a Server with a custom executor (for testing).
func NewServerWithExecutor(exec executor.CommandExecutor) *Server {
	return &Server{exec: exec}
}

// IsInstalled checks whether the nginx binary is on PATH.
func (s *Server) IsInstalled() bool {
	_, err := s.exec.LookPath("nginx")
	return err == nil
}

// SelfCheck asks nginx to validate its full configuration. On failure the
// returned diagnostic contains nginx's own output.
func (s *Server) SelfCheck() (string, error) {
	if !s.IsInstalled() {
		return "", errors.ToolMissing("nginx", "install it with: apt install nginx")
	}

	output, err := s.exec.Execute("nginx", "-t")
	diag := strings.TrimSpace(string(output))
	if err != nil {
		return diag, errors.Wrap(errors.ErrCodeConfigInvalid, "nginx configuration test failed", err)
	}
	return diag, nil
}

// Reload reloads nginx to apply configuration changes, falling back to
// nginx -s reload when systemctl is unavailable.
func (s *Server) Reload() error {
	output, err := s.exec.Execute("systemctl", "reload", "nginx")
	if err != nil {
		output, err = s.exec.Execute("nginx", "-s", "reload")
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "failed to reload nginx: "+strings.TrimSpace(string(output)), err)
		}
	}
	return nil
}

// IsRunning reports whether the nginx service is active.
func (s *Server) IsRunning() bool {
	out, err := s.exec.Execute("systemctl", "is-active", "nginx")
	if err == nil && strings.TrimSpace(string(out)) == "active" {
		return true
	}

	// Fallback for hosts without systemd
	out, err = s.exec.Execute("service", "nginx", "status")
	if err != nil {
		return false
	}
	text := string(out)
	return strings.Contains(text, "running") || strings.Contains(text, "active")
}
