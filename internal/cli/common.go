package cli

import (
	"strings"

	"github.com/sitectl/sitectl/internal/certbot"
	"github.com/sitectl/sitectl/internal/config"
	"github.com/sitectl/sitectl/internal/cron"
	"github.com/sitectl/sitectl/internal/health"
	"github.com/sitectl/sitectl/internal/lifecycle"
	"github.com/sitectl/sitectl/internal/nginx"
	"github.com/sitectl/sitectl/internal/output"
	"github.com/sitectl/sitectl/internal/registry"
	"github.com/sitectl/sitectl/internal/service"
	"github.com/sitectl/sitectl/internal/template"
)

// components bundles everything a command needs, built from the loaded
// settings and the injected executor.
type components struct {
	settings  *config.Settings
	reg       *registry.Registry
	gen       *template.Generator
	server    *nginx.Server
	certs     *certbot.Client
	svc       serviceManager
	scheduler *cron.Scheduler
	validator *lifecycle.Validator
}

// serviceManager is the slice of internal/service the CLI needs.
type serviceManager interface {
	Start(name string) error
	IsActive(name string) bool
	EnableOnBoot(name string) error
}

// buildComponents loads settings and wires the component graph.
func buildComponents() (*components, error) {
	settings, err := deps.SettingsLoader.Load()
	if err != nil {
		return nil, err
	}

	reg := registry.New(settings)
	server := nginx.NewServerWithExecutor(deps.Executor)
	return &components{
		settings:  settings,
		reg:       reg,
		gen:       template.NewGenerator(settings),
		server:    server,
		certs:     certbot.NewClientWithExecutor(deps.Executor, settings.LetsEncryptLiveDir),
		svc:       newServiceManager(),
		scheduler: cron.NewScheduler(settings.CronDir),
		validator: lifecycle.NewValidator(reg, server),
	}, nil
}

// newBootstrapper wires the certificate bootstrapper from components.
func (c *components) newBootstrapper() *lifecycle.Bootstrapper {
	return lifecycle.NewBootstrapper(c.settings, c.reg, c.gen, c.validator,
		c.certs, c.server, c.svc, c.scheduler)
}

// newChecker wires the health checker, using injected probes when tests
// provide them.
func (c *components) newChecker(strict bool) *health.Checker {
	var checker *health.Checker
	if deps.Resolver != nil || deps.HTTPClient != nil {
		checker = health.NewCheckerWithProbes(c.reg, c.server, c.certs, deps.Resolver, deps.HTTPClient)
	} else {
		checker = health.NewChecker(c.reg, c.server, c.certs)
	}
	checker.Strict = strict
	return checker
}

func newServiceManager() serviceManager {
	return service.NewManagerWithExecutor(deps.Executor)
}

// requireRoot refuses to continue without root privileges.
func requireRoot() error {
	return deps.RootChecker.RequireRoot()
}

// newSite validates the domain and builds the Site value.
func newSite(domain string, wwwRedirect bool) (config.Site, error) {
	return config.NewSite(strings.TrimSpace(strings.ToLower(domain)), wwwRedirect)
}

// confirmDomain asks the operator to type the exact domain back before a
// destructive operation. Any other input declines.
func confirmDomain(domain string) (bool, error) {
	output.Prompt("Type the domain name to confirm removal [%s]: ", domain)
	line, err := deps.StdinReader.ReadString('\n')
	if err != nil {
		return false, nil
	}
	return strings.TrimSpace(line) == domain, nil
}

// outputResult handles JSON or human-readable output
func outputResult(data interface{}, successMsg string, args ...interface{}) error {
	if jsonOutput {
		return output.JSON(data)
	}
	output.Success(successMsg, args...)
	return nil
}

// CommandResult represents a common result structure for CLI commands
type CommandResult struct {
	Success bool   `json:"success"`
	Domain  string `json:"domain"`
	Action  string `json:"action,omitempty"`
	Message string `json:"message,omitempty"`
}
