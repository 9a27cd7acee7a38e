// Package lifecycle implements the site state machine: isolation
// validation of staged configuration and the two stage certificate
// bootstrap that moves a site from plain HTTP to HTTPS.
package lifecycle

import (
	"github.com/sitectl/sitectl/internal/errors"
	"github.com/sitectl/sitectl/internal/logger"
	"github.com/sitectl/sitectl/internal/registry"
)

// ConfigChecker validates the web server's full configuration and
// returns the tool's own diagnostic output.
type ConfigChecker interface {
	SelfCheck() (string, error)
}

// Validator proves that a single site's configuration is loadable in
// isolation before it is allowed to stay enabled alongside the rest.
type Validator struct {
	reg     *registry.Registry
	checker ConfigChecker
}

// NewValidator creates a Validator over the given registry and checker.
func NewValidator(reg *registry.Registry, checker ConfigChecker) *Validator {
	return &Validator{reg: reg, checker: checker}
}

// Validate activates the domain, quarantines every other enabled site,
// runs the server self check against the lone survivor, and restores the
// quarantined sites no matter how the check went. A restore failure is
// fatal and takes precedence over the check result: a passing check is
// worthless if the rest of the fleet did not come back.
func (v *Validator) Validate(domain string) error {
	if err := v.reg.ReconcileHoldingArea(); err != nil {
		return err
	}

	if err := v.reg.Activate(domain); err != nil {
		return err
	}

	moved, err := v.reg.QuarantineOthers(domain)
	if err != nil {
		if restoreErr := v.reg.RestoreQuarantined(moved); restoreErr != nil {
			return restoreErr
		}
		return errors.Wrap(errors.ErrCodeInternal, "failed to isolate "+domain, err)
	}

	logger.DebugFields("running isolated self check", map[string]interface{}{
		"domain":      domain,
		"quarantined": len(moved),
	})

	diag, checkErr := v.checker.SelfCheck()

	if restoreErr := v.reg.RestoreQuarantined(moved); restoreErr != nil {
		return restoreErr
	}

	if checkErr != nil {
		if errors.Is(checkErr, errors.ErrToolMissing) {
			return checkErr
		}
		// The new site's config is the only one loaded, so the
		// diagnostic points at it.
		if derr := v.reg.Deactivate(domain); derr != nil {
			logger.WarnFields("failed to deactivate rejected site", map[string]interface{}{
				"domain": domain,
				"error":  derr.Error(),
			})
		}
		return errors.ConfigInvalid(domain, diag)
	}
	return nil
}
