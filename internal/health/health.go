// Package health inspects a deployed site end to end: name resolution,
// registry state, server liveness, configuration validity, HTTP and
// HTTPS reachability and certificate freshness.
package health

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sitectl/sitectl/internal/config"
	"github.com/sitectl/sitectl/internal/registry"
)

// Status is the outcome of a single probe.
type Status string

const (
	// StatusPass means the probe succeeded.
	StatusPass Status = "pass"
	// StatusWarn means the probe found something worth attention but
	// not service affecting.
	StatusWarn Status = "warn"
	// StatusFail means the probe found the site broken.
	StatusFail Status = "fail"
)

// Probe is one named check with its outcome.
type Probe struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Report is the aggregate of all probes for a site.
type Report struct {
	Domain string  `json:"domain"`
	Probes []Probe `json:"probes"`
}

// Healthy reports whether no probe failed.
func (r *Report) Healthy() bool {
	return r.FailCount() == 0
}

// FailCount returns the number of failing probes.
func (r *Report) FailCount() int {
	n := 0
	for _, p := range r.Probes {
		if p.Status == StatusFail {
			n++
		}
	}
	return n
}

// Warnings returns the number of warning probes.
func (r *Report) Warnings() int {
	n := 0
	for _, p := range r.Probes {
		if p.Status == StatusWarn {
			n++
		}
	}
	return n
}

// DNSResolver resolves host names. *net.Resolver satisfies it.
type DNSResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// HTTPDoer performs HTTP requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ServerProbe is what the checker needs from the web server.
type ServerProbe interface {
	IsRunning() bool
	SelfCheck() (string, error)
}

// CertInspector reports certificate presence and expiry.
type CertInspector interface {
	HasCert(domain string) bool
	Expiry(domain string) (time.Time, error)
}

// expiryWarnWindow is how close to NotAfter a certificate may get
// before the probe degrades to a warning.
const expiryWarnWindow = 30 * 24 * time.Hour

const probeTimeout = 10 * time.Second

// Checker runs the full probe suite for a site.
type Checker struct {
	reg      *registry.Registry
	server   ServerProbe
	certs    CertInspector
	resolver DNSResolver
	client   HTTPDoer

	// Strict keeps a failing self check fatal even when the site is
	// demonstrably serving HTTPS.
	Strict bool

	now func() time.Time
}

// NewChecker creates a Checker with live resolver and HTTP client.
func NewChecker(reg *registry.Registry, server ServerProbe, certs CertInspector) *Checker {
	return &Checker{
		reg:      reg,
		server:   server,
		certs:    certs,
		resolver: net.DefaultResolver,
		client:   &http.Client{Timeout: probeTimeout},
		now:      time.Now,
	}
}

// NewCheckerWithProbes creates a Checker with injected probes (for testing).
func NewCheckerWithProbes(reg *registry.Registry, server ServerProbe, certs CertInspector,
	resolver DNSResolver, client HTTPDoer) *Checker {
	return &Checker{
		reg:      reg,
		server:   server,
		certs:    certs,
		resolver: resolver,
		client:   client,
		now:      time.Now,
	}
}

// Check runs every probe for the site and returns the report. Probes
// never abort the suite; each records its own outcome.
func (c *Checker) Check(ctx context.Context, site config.Site) *Report {
	report := &Report{Domain: site.Domain}
	add := func(p Probe) { report.Probes = append(report.Probes, p) }

	add(c.probeDNS(ctx, site))
	add(c.probeRegistry(site))
	add(c.probeService())
	selfCheck := c.probeSelfCheck()
	add(c.probeHTTP(ctx, site))
	httpsProbe := c.probeHTTPS(ctx, site)
	add(httpsProbe)
	add(c.probeCertificate(site))

	// A site that answers over HTTPS is serving traffic, so a failing
	// self check is likely about some other enabled site. Strict mode
	// keeps it fatal.
	if selfCheck.Status == StatusFail && httpsProbe.Status == StatusPass && !c.Strict {
		selfCheck.Status = StatusWarn
		selfCheck.Detail += " (site is serving, failure may come from another site's config)"
	}
	report.Probes = append(report.Probes, selfCheck)

	return report
}

func (c *Checker) probeDNS(ctx context.Context, site config.Site) Probe {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if _, err := c.resolver.LookupHost(ctx, site.Domain); err != nil {
		return Probe{Name: "dns", Status: StatusFail,
			Detail: fmt.Sprintf("%s does not resolve: %v", site.Domain, err)}
	}
	if _, err := c.resolver.LookupHost(ctx, site.WWWDomain()); err != nil {
		return Probe{Name: "dns", Status: StatusWarn,
			Detail: fmt.Sprintf("%s does not resolve; the www name will not work", site.WWWDomain())}
	}
	return Probe{Name: "dns", Status: StatusPass}
}

func (c *Checker) probeRegistry(site config.Site) Probe {
	if !c.reg.IsPublished(site.Domain) {
		return Probe{Name: "registry", Status: StatusFail,
			Detail: "no published configuration"}
	}
	if !c.reg.IsActive(site.Domain) {
		return Probe{Name: "registry", Status: StatusFail,
			Detail: "configuration published but not enabled"}
	}
	return Probe{Name: "registry", Status: StatusPass}
}

func (c *Checker) probeService() Probe {
	if !c.server.IsRunning() {
		return Probe{Name: "service", Status: StatusFail, Detail: "web server is not running"}
	}
	return Probe{Name: "service", Status: StatusPass}
}

func (c *Checker) probeSelfCheck() Probe {
	diag, err := c.server.SelfCheck()
	if err != nil {
		return Probe{Name: "config", Status: StatusFail, Detail: diag}
	}
	return Probe{Name: "config", Status: StatusPass}
}

func (c *Checker) probeHTTP(ctx context.Context, site config.Site) Probe {
	status, err := c.fetch(ctx, "http://"+site.Domain+"/")
	if err != nil {
		return Probe{Name: "http", Status: StatusFail, Detail: err.Error()}
	}
	// Redirects count: an HTTPS site answers HTTP with a 301.
	if status >= 200 && status < 400 {
		return Probe{Name: "http", Status: StatusPass}
	}
	return Probe{Name: "http", Status: StatusFail,
		Detail: fmt.Sprintf("unexpected status %d", status)}
}

func (c *Checker) probeHTTPS(ctx context.Context, site config.Site) Probe {
	if !c.certs.HasCert(site.Domain) {
		return Probe{Name: "https", Status: StatusWarn, Detail: "no certificate, serving HTTP only"}
	}
	status, err := c.fetch(ctx, "https://"+site.Domain+"/")
	if err != nil {
		return Probe{Name: "https", Status: StatusFail, Detail: err.Error()}
	}
	if status >= 200 && status < 300 {
		return Probe{Name: "https", Status: StatusPass}
	}
	return Probe{Name: "https", Status: StatusFail,
		Detail: fmt.Sprintf("unexpected status %d", status)}
}

func (c *Checker) probeCertificate(site config.Site) Probe {
	if !c.certs.HasCert(site.Domain) {
		return Probe{Name: "certificate", Status: StatusWarn, Detail: "no certificate issued"}
	}
	notAfter, err := c.certs.Expiry(site.Domain)
	if err != nil {
		return Probe{Name: "certificate", Status: StatusFail,
			Detail: "cannot read certificate: " + err.Error()}
	}
	remaining := notAfter.Sub(c.now())
	if remaining <= 0 {
		return Probe{Name: "certificate", Status: StatusFail,
			Detail: fmt.Sprintf("certificate expired %s", notAfter.Format("2006-01-02"))}
	}
	if remaining < expiryWarnWindow {
		return Probe{Name: "certificate", Status: StatusWarn,
			Detail: fmt.Sprintf("certificate expires in %d days", int(remaining.Hours()/24))}
	}
	return Probe{Name: "certificate", Status: StatusPass}
}

func (c *Checker) fetch(ctx context.Context, url string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
