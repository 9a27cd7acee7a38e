package cli

import (
	"path/filepath"

	"github.com/sitectl/sitectl/internal/config"
	"github.com/sitectl/sitectl/internal/errors"
	"github.com/sitectl/sitectl/internal/executor"
	"github.com/sitectl/sitectl/internal/health"
	"github.com/sitectl/sitectl/internal/input"
)

// MockSettingsLoader is a test double for SettingsLoader
type MockSettingsLoader struct {
	Settings *config.Settings
	LoadErr  error
}

func (m *MockSettingsLoader) Load() (*config.Settings, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Settings == nil {
		m.Settings = config.Defaults()
	}
	return m.Settings, nil
}

// MockRootChecker is a test double for RootChecker
type MockRootChecker struct {
	IsRoot bool
	Calls  int
}

func (m *MockRootChecker) RequireRoot() error {
	m.Calls++
	if !m.IsRoot {
		return errors.ErrRootRequired
	}
	return nil
}

// MockDependenciesBuilder helps create mock dependencies for tests
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps creates a new MockDependenciesBuilder with sensible defaults
func NewMockDeps() *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			SettingsLoader: &MockSettingsLoader{},
			Executor:       &executor.MockExecutor{},
			RootChecker:    &MockRootChecker{IsRoot: true},
			StdinReader:    input.NewStringReader("y\n"),
		},
	}
}

// WithSettings sets the settings for the mock
func (b *MockDependenciesBuilder) WithSettings(settings *config.Settings) *MockDependenciesBuilder {
	b.deps.SettingsLoader = &MockSettingsLoader{Settings: settings}
	return b
}

// WithExecutor sets a custom executor
func (b *MockDependenciesBuilder) WithExecutor(exec executor.CommandExecutor) *MockDependenciesBuilder {
	b.deps.Executor = exec
	return b
}

// WithRootAccess sets whether root access is available
func (b *MockDependenciesBuilder) WithRootAccess(isRoot bool) *MockDependenciesBuilder {
	b.deps.RootChecker = &MockRootChecker{IsRoot: isRoot}
	return b
}

// WithStdinInput sets the stdin input for the mock
func (b *MockDependenciesBuilder) WithStdinInput(lines ...string) *MockDependenciesBuilder {
	b.deps.StdinReader = input.NewStringReader(lines...)
	return b
}

// WithResolver sets the DNS resolver probe
func (b *MockDependenciesBuilder) WithResolver(r health.DNSResolver) *MockDependenciesBuilder {
	b.deps.Resolver = r
	return b
}

// WithHTTPClient sets the HTTP probe client
func (b *MockDependenciesBuilder) WithHTTPClient(c health.HTTPDoer) *MockDependenciesBuilder {
	b.deps.HTTPClient = c
	return b
}

// Build returns the configured Dependencies
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}

// testSettingsIn builds settings rooted under base, so commands operate
// entirely inside a temp directory.
func testSettingsIn(base string) *config.Settings {
	return &config.Settings{
		SitesAvailable:     filepath.Join(base, "sites-available"),
		SitesEnabled:       filepath.Join(base, "sites-enabled"),
		QuarantineDir:      filepath.Join(base, "quarantine"),
		StagingDir:         filepath.Join(base, "staging"),
		WebrootDir:         filepath.Join(base, "webroot"),
		ContentRoot:        filepath.Join(base, "www"),
		LetsEncryptLiveDir: filepath.Join(base, "live"),
		CronDir:            filepath.Join(base, "cron.d"),
	}
}

// TestHelper swaps in mock dependencies for the duration of a test.
type TestHelper struct {
	Settings *config.Settings
	Executor *executor.MockExecutor
	OldDeps  *Dependencies
}

// NewTestHelper installs mock dependencies rooted at base and restores
// the originals on cleanup.
func NewTestHelper(t interface {
	Helper()
	Cleanup(func())
}, base string) *TestHelper {
	t.Helper()

	settings := testSettingsIn(base)
	exec := &executor.MockExecutor{}
	helper := &TestHelper{
		Settings: settings,
		Executor: exec,
		OldDeps:  deps,
	}

	deps = NewMockDeps().
		WithSettings(settings).
		WithExecutor(exec).
		Build()

	t.Cleanup(func() {
		deps = helper.OldDeps
	})

	return helper
}

// SetRootAccess sets whether root access is available
func (h *TestHelper) SetRootAccess(isRoot bool) {
	deps.RootChecker = &MockRootChecker{IsRoot: isRoot}
}

// SetStdinInput sets the stdin input
func (h *TestHelper) SetStdinInput(lines ...string) {
	deps.StdinReader = input.NewStringReader(lines...)
}
