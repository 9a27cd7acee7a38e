package lifecycle

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/sitectl/sitectl/internal/config"
	"github.com/sitectl/sitectl/internal/errors"
	"github.com/sitectl/sitectl/internal/registry"
	"github.com/sitectl/sitectl/internal/template"
)

type mockCerts struct {
	installed bool
	hasCert   bool
	issueErr  error
	// when true, a successful Issue flips hasCert
	materialize bool
	issueCalls  int
	lastAlts    []string
	lastWebroot string
	lastEmail   string
}

func (m *mockCerts) IsInstalled() bool          { return m.installed }
func (m *mockCerts) HasCert(domain string) bool { return m.hasCert }

func (m *mockCerts) Issue(ctx context.Context, domain string, altNames []string, webroot, email string) error {
	m.issueCalls++
	m.lastAlts = altNames
	m.lastWebroot = webroot
	m.lastEmail = email
	if m.issueErr != nil {
		return m.issueErr
	}
	if m.materialize {
		m.hasCert = true
	}
	return nil
}

type mockServer struct {
	running           bool
	reloads           int
	startFlips        bool
	startCalls        int
	startTarget       string
	enableOnBootCalls int
}

func (m *mockServer) IsRunning() bool { return m.running }
func (m *mockServer) Reload() error {
	m.reloads++
	return nil
}

func (m *mockServer) Start(name string) error {
	m.startCalls++
	m.startTarget = name
	if m.startFlips {
		m.running = true
	}
	return nil
}

func (m *mockServer) EnableOnBoot(name string) error {
	m.enableOnBootCalls++
	return nil
}

type mockScheduler struct {
	calls int
	err   error
}

func (m *mockScheduler) ScheduleRenewal() error {
	m.calls++
	return m.err
}

type bootstrapFixture struct {
	settings  *config.Settings
	reg       *registry.Registry
	checker   *mockChecker
	certs     *mockCerts
	server    *mockServer
	scheduler *mockScheduler
	boot      *Bootstrapper
}

func newBootstrapFixture(t *testing.T) *bootstrapFixture {
	t.Helper()
	settings := testSettings(t)
	reg := registry.New(settings)
	gen := template.NewGenerator(settings)
	checker := &mockChecker{}
	validator := NewValidator(reg, checker)
	certs := &mockCerts{installed: true, materialize: true}
	server := &mockServer{running: true, startFlips: true}
	scheduler := &mockScheduler{}
	return &bootstrapFixture{
		settings:  settings,
		reg:       reg,
		checker:   checker,
		certs:     certs,
		server:    server,
		scheduler: scheduler,
		boot:      NewBootstrapper(settings, reg, gen, validator, certs, server, server, scheduler),
	}
}

func (f *bootstrapFixture) enabledConfig(t *testing.T, domain string) string {
	t.Helper()
	data, err := os.ReadFile(f.reg.AvailablePath(domain))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestBootstrapHappyPath(t *testing.T) {
	f := newBootstrapFixture(t)
	site, err := config.NewSite("example.com", false)
	if err != nil {
		t.Fatal(err)
	}

	state, err := f.boot.Bootstrap(context.Background(), site, "ops@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != StateIssued {
		t.Errorf("state = %s, want %s", state, StateIssued)
	}

	if f.certs.issueCalls != 1 {
		t.Errorf("issue calls = %d", f.certs.issueCalls)
	}
	if len(f.certs.lastAlts) != 1 || f.certs.lastAlts[0] != "www.example.com" {
		t.Errorf("alt names = %v", f.certs.lastAlts)
	}
	if f.certs.lastWebroot != f.settings.WebrootDir {
		t.Errorf("webroot = %q", f.certs.lastWebroot)
	}
	if f.certs.lastEmail != "ops@example.com" {
		t.Errorf("email = %q", f.certs.lastEmail)
	}

	conf := f.enabledConfig(t, "example.com")
	if !strings.Contains(conf, "listen 443 ssl") {
		t.Error("final config is not HTTPS")
	}
	if !f.reg.IsActive("example.com") {
		t.Error("site not active after bootstrap")
	}
	if f.scheduler.calls != 1 {
		t.Errorf("renewal schedule calls = %d", f.scheduler.calls)
	}
	// Reload after the HTTP stage and after the HTTPS swap.
	if f.server.reloads != 2 {
		t.Errorf("reloads = %d", f.server.reloads)
	}
}

func TestBootstrapIssuanceFailureKeepsHTTP(t *testing.T) {
	f := newBootstrapFixture(t)
	f.certs.issueErr = errors.IssuanceFailed("example.com", errors.New("challenges failed"))

	site, _ := config.NewSite("example.com", false)
	state, err := f.boot.Bootstrap(context.Background(), site, "")

	if state != StateFailed {
		t.Errorf("state = %s, want %s", state, StateFailed)
	}
	if !errors.Is(err, errors.ErrIssuanceFailed) {
		t.Fatalf("expected IssuanceFailed, got %v", err)
	}

	conf := f.enabledConfig(t, "example.com")
	if strings.Contains(conf, "listen 443") {
		t.Error("HTTPS config published despite failed issuance")
	}
	if !strings.Contains(conf, ".well-known/acme-challenge") {
		t.Error("HTTP config lost the challenge path")
	}
	if !f.reg.IsActive("example.com") {
		t.Error("site lost its HTTP service on issuance failure")
	}
	if f.scheduler.calls != 0 {
		t.Error("renewal scheduled despite failure")
	}
}

func TestBootstrapGatesOnCertMaterial(t *testing.T) {
	f := newBootstrapFixture(t)
	// Issue "succeeds" but never produces files.
	f.certs.materialize = false

	site, _ := config.NewSite("example.com", false)
	state, err := f.boot.Bootstrap(context.Background(), site, "")

	if state != StateFailed {
		t.Errorf("state = %s, want %s", state, StateFailed)
	}
	if !errors.Is(err, errors.ErrIssuanceFailed) {
		t.Fatalf("expected IssuanceFailed, got %v", err)
	}
	conf := f.enabledConfig(t, "example.com")
	if strings.Contains(conf, "listen 443") {
		t.Error("HTTPS config published without certificate files")
	}
}

func TestBootstrapPromotionFailureFallsBackToHTTP(t *testing.T) {
	f := newBootstrapFixture(t)
	// The HTTP stage validates clean; the HTTPS configuration is
	// rejected by the server's own test.
	f.checker.fn = func() (string, error) {
		conf, err := os.ReadFile(f.reg.AvailablePath("example.com"))
		if err != nil {
			return "", err
		}
		if strings.Contains(string(conf), "listen 443") {
			return `nginx: [emerg] cannot load certificate`, errors.New("exit status 1")
		}
		return "nginx: configuration file test is successful", nil
	}

	site, _ := config.NewSite("example.com", false)
	state, err := f.boot.Bootstrap(context.Background(), site, "")

	if state != StateFailed {
		t.Errorf("state = %s, want %s", state, StateFailed)
	}
	if !errors.Is(err, errors.ErrConfigInvalid) {
		t.Fatalf("expected ConfigInvalid, got %v", err)
	}

	if !f.reg.IsActive("example.com") {
		t.Error("site left disabled after failed promotion")
	}
	conf := f.enabledConfig(t, "example.com")
	if strings.Contains(conf, "listen 443") {
		t.Error("rejected HTTPS config left published")
	}
	if !strings.Contains(conf, ".well-known/acme-challenge") {
		t.Error("fallback config lost the challenge path")
	}
	// Reload after the HTTP stage and again after the fallback republish.
	if f.server.reloads != 2 {
		t.Errorf("reloads = %d", f.server.reloads)
	}
}

func TestBootstrapSkipsIssuanceWhenCertPresent(t *testing.T) {
	f := newBootstrapFixture(t)
	f.certs.hasCert = true

	site, _ := config.NewSite("example.com", true)
	state, err := f.boot.Bootstrap(context.Background(), site, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != StateIssued {
		t.Errorf("state = %s", state)
	}
	if f.certs.issueCalls != 0 {
		t.Errorf("issue called %d times with cert on disk", f.certs.issueCalls)
	}
	conf := f.enabledConfig(t, "example.com")
	if !strings.Contains(conf, "listen 443 ssl") {
		t.Error("final config is not HTTPS")
	}
}

func TestBootstrapSchedulerFailureIsNotFatal(t *testing.T) {
	f := newBootstrapFixture(t)
	f.scheduler.err = errors.New("read-only filesystem")

	site, _ := config.NewSite("example.com", false)
	state, err := f.boot.Bootstrap(context.Background(), site, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != StateIssued {
		t.Errorf("state = %s", state)
	}
}

func TestBootstrapStartsStoppedServer(t *testing.T) {
	f := newBootstrapFixture(t)
	f.server.running = false

	site, _ := config.NewSite("example.com", false)
	if _, err := f.boot.Bootstrap(context.Background(), site, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.server.startCalls != 1 || f.server.startTarget != "nginx" {
		t.Errorf("start calls = %d target = %q", f.server.startCalls, f.server.startTarget)
	}
	if f.server.enableOnBootCalls != 1 {
		t.Errorf("enable-on-boot calls = %d", f.server.enableOnBootCalls)
	}
}

func TestBootstrapFailsWhenServerWillNotStart(t *testing.T) {
	f := newBootstrapFixture(t)
	f.server.running = false
	f.server.startFlips = false

	site, _ := config.NewSite("example.com", false)
	state, err := f.boot.Bootstrap(context.Background(), site, "")
	if err == nil {
		t.Fatal("expected error")
	}
	if state != StateNoCert {
		t.Errorf("state = %s, want %s", state, StateNoCert)
	}
	if f.certs.issueCalls != 0 {
		t.Error("issuance attempted with server down")
	}
}

func TestBootstrapRequiresCertbot(t *testing.T) {
	f := newBootstrapFixture(t)
	f.certs.installed = false

	site, _ := config.NewSite("example.com", false)
	_, err := f.boot.Bootstrap(context.Background(), site, "")
	if !errors.Is(err, errors.ErrToolMissing) {
		t.Fatalf("expected ToolMissing, got %v", err)
	}
}
