package cli

import (
	"os"

	"github.com/sitectl/sitectl/internal/output"
	"github.com/spf13/cobra"
)

var (
	removeForce  bool
	removeDryRun bool
)

var removeCmd = &cobra.Command{
	Use:   "remove <domain>",
	Short: "Remove a site and its certificate",
	Long: `Tear a site down: disable it, delete its published and staged
configuration, revoke its certificate lineage and delete its content
directory. The command asks you to type the domain back before touching
anything; use --force to skip the confirmation.

Examples:
  sitectl remove example.com
  sitectl remove example.com --force`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "Skip confirmation prompt")
	removeCmd.Flags().BoolVar(&removeDryRun, "dry-run", false, "Show what would be removed without removing it")

	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	site, err := newSite(args[0], false)
	if err != nil {
		return err
	}
	c, err := buildComponents()
	if err != nil {
		return err
	}

	if removeDryRun {
		ops := []DryRunOperation{
			{Action: "remove", Target: c.reg.EnabledPath(site.Domain)},
			{Action: "remove", Target: c.reg.AvailablePath(site.Domain)},
			{Action: "remove", Target: c.reg.StagedPath(site.Domain)},
			{Action: "run", Target: "certbot delete --cert-name " + site.Domain},
			{Action: "remove", Target: c.settings.ContentDir(site.Domain)},
			{Action: "run", Target: "nginx -t"},
			{Action: "reload", Target: "nginx"},
		}
		return outputDryRun(site.Domain, ops)
	}

	if err := requireRoot(); err != nil {
		return err
	}

	if !removeForce {
		ok, err := confirmDomain(site.Domain)
		if err != nil {
			return err
		}
		if !ok {
			output.Info("Removal of %s cancelled", site.Domain)
			return nil
		}
	}

	contentDir := c.settings.ContentDir(site.Domain)

	// Every step runs regardless of earlier failures, so a stuck marker
	// or missing certificate never leaves the rest of the teardown
	// undone. Each outcome is reported on its own.
	steps := []struct {
		name string
		run  func() error
	}{
		{"disable", func() error { return c.reg.Deactivate(site.Domain) }},
		{"remove published configuration", func() error { return c.reg.RemovePublished(site.Domain) }},
		{"remove staged configuration", func() error { return c.reg.RemoveStaged(site.Domain) }},
		{"delete certificate", func() error { return c.certs.Delete(site.Domain) }},
		{"remove content directory", func() error { return os.RemoveAll(contentDir) }},
	}

	results := make([]RemoveStepResult, 0, len(steps))
	failures := 0
	for _, step := range steps {
		result := RemoveStepResult{Name: step.name, OK: true}
		if err := step.run(); err != nil {
			result.OK = false
			result.Error = err.Error()
			failures++
			output.Warn("Step %q failed: %v", step.name, err)
		}
		results = append(results, result)
	}

	remaining, err := c.reg.EnabledDomains()
	if err == nil && len(remaining) == 0 {
		if err := c.scheduler.RemoveSchedule(); err != nil {
			output.Warn("Failed to remove renewal schedule: %v", err)
		}
	}

	if _, err := c.server.SelfCheck(); err != nil {
		output.Warn("Configuration test failed after removal: %v", err)
	} else if err := c.server.Reload(); err != nil {
		output.Warn("Failed to reload nginx: %v", err)
	}

	if failures > 0 {
		if jsonOutput {
			return output.JSON(map[string]interface{}{
				"success": false,
				"domain":  site.Domain,
				"steps":   results,
			})
		}
		output.Warn("Site %s removed with %d failed step(s)", site.Domain, failures)
		return nil
	}
	return outputResult(
		map[string]interface{}{
			"success": true,
			"domain":  site.Domain,
			"removed": true,
			"steps":   results,
		},
		"Site %s removed", site.Domain,
	)
}

// RemoveStepResult reports one teardown step's outcome.
type RemoveStepResult struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
