package lifecycle

import (
	"context"
	"os"

	"github.com/sitectl/sitectl/internal/config"
	"github.com/sitectl/sitectl/internal/errors"
	"github.com/sitectl/sitectl/internal/logger"
	"github.com/sitectl/sitectl/internal/registry"
	"github.com/sitectl/sitectl/internal/template"
)

// State describes where a site sits in the certificate lifecycle.
type State string

const (
	// StateNoCert means the site serves plain HTTP and no issuance ran.
	StateNoCert State = "no-cert"
	// StateRequesting means issuance is in flight.
	StateRequesting State = "requesting"
	// StateIssued means the site serves HTTPS with a live certificate.
	StateIssued State = "issued"
	// StateFailed means issuance failed and the site stayed on HTTP.
	StateFailed State = "failed"
)

// CertAuthority issues and inspects certificates for this host.
type CertAuthority interface {
	IsInstalled() bool
	HasCert(domain string) bool
	Issue(ctx context.Context, domain string, altNames []string, webroot, email string) error
}

// WebServer is what the bootstrapper needs from the running server.
type WebServer interface {
	IsRunning() bool
	Reload() error
}

// ServiceStarter starts system services and marks them for boot.
type ServiceStarter interface {
	Start(name string) error
	EnableOnBoot(name string) error
}

// RenewalScheduler installs the periodic renewal job.
type RenewalScheduler interface {
	ScheduleRenewal() error
}

// Bootstrapper walks a site from plain HTTP to HTTPS. The first stage
// publishes an HTTP only configuration that exposes the ACME challenge
// path; the second runs issuance against it and, only once the
// certificate material exists on disk, swaps in the HTTPS configuration.
type Bootstrapper struct {
	settings  *config.Settings
	reg       *registry.Registry
	gen       *template.Generator
	validator *Validator
	certs     CertAuthority
	server    WebServer
	svc       ServiceStarter
	scheduler RenewalScheduler
}

// NewBootstrapper wires a Bootstrapper from its collaborators.
func NewBootstrapper(settings *config.Settings, reg *registry.Registry, gen *template.Generator,
	validator *Validator, certs CertAuthority, server WebServer, svc ServiceStarter,
	scheduler RenewalScheduler) *Bootstrapper {
	return &Bootstrapper{
		settings:  settings,
		reg:       reg,
		gen:       gen,
		validator: validator,
		certs:     certs,
		server:    server,
		svc:       svc,
		scheduler: scheduler,
	}
}

// Bootstrap obtains a certificate for the site and promotes it to HTTPS.
// On issuance failure the site keeps serving its HTTP configuration and
// the returned state is StateFailed.
func (b *Bootstrapper) Bootstrap(ctx context.Context, site config.Site, email string) (State, error) {
	if !b.certs.IsInstalled() {
		return StateNoCert, errors.ToolMissing("certbot", "install it with: apt install certbot")
	}

	if err := os.MkdirAll(b.settings.WebrootDir, 0o755); err != nil {
		return StateNoCert, errors.Wrap(errors.ErrCodeInternal, "failed to create challenge webroot", err)
	}

	if err := b.ensureServerRunning(); err != nil {
		return StateNoCert, err
	}

	if b.certs.HasCert(site.Domain) {
		logger.InfoFields("certificate already present, promoting to https", map[string]interface{}{
			"domain": site.Domain,
		})
		if err := b.promote(site); err != nil {
			return StateNoCert, err
		}
		return StateIssued, nil
	}

	// Stage one: an HTTP only config that serves the challenge path.
	if err := b.ensureHTTPServing(site); err != nil {
		return StateNoCert, err
	}

	// Every variant answers for the www name too, so the certificate
	// has to cover it.
	altNames := []string{site.WWWDomain()}

	logger.InfoFields("requesting certificate", map[string]interface{}{
		"domain": site.Domain,
		"names":  len(altNames) + 1,
	})

	if err := b.certs.Issue(ctx, site.Domain, altNames, b.settings.WebrootDir, email); err != nil {
		return StateFailed, err
	}

	// Never switch to the HTTPS config on the say so of a zero exit
	// code alone. The certificate files must actually be there.
	if !b.certs.HasCert(site.Domain) {
		return StateFailed, errors.IssuanceFailed(site.Domain,
			errors.New("certbot reported success but certificate files are missing"))
	}

	// Stage two: swap in the HTTPS config.
	if err := b.promote(site); err != nil {
		return StateFailed, err
	}

	if err := b.scheduler.ScheduleRenewal(); err != nil {
		logger.WarnFields("failed to install renewal schedule", map[string]interface{}{
			"domain": site.Domain,
			"error":  err.Error(),
		})
	}

	return StateIssued, nil
}

// ensureServerRunning starts nginx when it is down so the challenge can
// actually be served.
func (b *Bootstrapper) ensureServerRunning() error {
	if b.server.IsRunning() {
		return nil
	}
	logger.Info("web server is not running, starting it")
	if err := b.svc.Start("nginx"); err != nil {
		return err
	}
	if !b.server.IsRunning() {
		return errors.Wrap(errors.ErrCodeInternal, "web server did not come up after start", nil)
	}
	if err := b.svc.EnableOnBoot("nginx"); err != nil {
		logger.WarnFields("failed to enable web server on boot", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return nil
}

// ensureHTTPServing makes sure the HTTP only configuration is staged,
// published, validated and live.
func (b *Bootstrapper) ensureHTTPServing(site config.Site) error {
	if _, err := b.gen.Stage(site, false); err != nil {
		return err
	}
	if err := b.reg.Publish(site.Domain); err != nil {
		return err
	}
	if err := b.validator.Validate(site.Domain); err != nil {
		return err
	}
	return b.server.Reload()
}

// promote regenerates the configuration with HTTPS listeners and makes
// it live. When the HTTPS configuration fails validation the site is
// rolled back to its HTTP configuration rather than left disabled.
func (b *Bootstrapper) promote(site config.Site) error {
	if _, err := b.gen.Stage(site, true); err != nil {
		return err
	}
	if err := b.reg.Publish(site.Domain); err != nil {
		return err
	}
	if err := b.validator.Validate(site.Domain); err != nil {
		if errors.Is(err, errors.ErrConfigInvalid) {
			b.rollbackToHTTP(site)
		}
		return err
	}
	return b.server.Reload()
}

// rollbackToHTTP republishes the HTTP only configuration after a failed
// promotion, so the site keeps serving over HTTP. Best effort: each step
// is logged on failure but cannot make things worse than staying down.
func (b *Bootstrapper) rollbackToHTTP(site config.Site) {
	logger.WarnFields("https configuration rejected, falling back to http", map[string]interface{}{
		"domain": site.Domain,
	})
	if _, err := b.gen.Stage(site, false); err != nil {
		logger.WarnFields("fallback staging failed", map[string]interface{}{
			"domain": site.Domain,
			"error":  err.Error(),
		})
		return
	}
	if err := b.reg.Publish(site.Domain); err != nil {
		logger.WarnFields("fallback publish failed", map[string]interface{}{
			"domain": site.Domain,
			"error":  err.Error(),
		})
		return
	}
	if err := b.reg.Activate(site.Domain); err != nil {
		logger.WarnFields("fallback activation failed", map[string]interface{}{
			"domain": site.Domain,
			"error":  err.Error(),
		})
		return
	}
	if err := b.server.Reload(); err != nil {
		logger.WarnFields("fallback reload failed", map[string]interface{}{
			"domain": site.Domain,
			"error":  err.Error(),
		})
	}
}
