package cli

import (
	"github.com/sitectl/sitectl/internal/output"
	"github.com/spf13/cobra"
)

var (
	enableNoReload bool
	enableDryRun   bool
)

var enableCmd = &cobra.Command{
	Use:   "enable <domain>",
	Short: "Enable a published site after validating it in isolation",
	Long: `Enable a published site. Before the site is allowed to stay enabled,
every other enabled site is temporarily set aside and the server
configuration is tested with only the new site loaded, so a broken
configuration can never take the rest of the host down with it. The
other sites are restored afterwards regardless of the result.

Examples:
  sitectl enable example.com
  sitectl enable example.com --no-reload`,
	Args: cobra.ExactArgs(1),
	RunE: runEnable,
}

func init() {
	enableCmd.Flags().BoolVar(&enableNoReload, "no-reload", false, "Don't reload the web server")
	enableCmd.Flags().BoolVar(&enableDryRun, "dry-run", false, "Show what would be done without doing it")

	rootCmd.AddCommand(enableCmd)
}

func runEnable(cmd *cobra.Command, args []string) error {
	site, err := newSite(args[0], false)
	if err != nil {
		return err
	}

	c, err := buildComponents()
	if err != nil {
		return err
	}

	if enableDryRun {
		ops := []DryRunOperation{
			{Action: "symlink", Target: c.reg.EnabledPath(site.Domain),
				Detail: "points at " + c.reg.AvailablePath(site.Domain)},
			{Action: "quarantine", Target: c.settings.SitesEnabled,
				Detail: "other sites set aside during the configuration test"},
			{Action: "run", Target: "nginx -t"},
			{Action: "restore", Target: c.settings.SitesEnabled},
		}
		if !enableNoReload {
			ops = append(ops, DryRunOperation{Action: "reload", Target: "nginx"})
		}
		return outputDryRun(site.Domain, ops)
	}

	if err := requireRoot(); err != nil {
		return err
	}

	output.Info("Validating configuration in isolation...")
	if err := c.validator.Validate(site.Domain); err != nil {
		return err
	}

	if !enableNoReload {
		output.Info("Reloading nginx...")
		if err := c.server.Reload(); err != nil {
			return err
		}
	}

	return outputResult(
		map[string]interface{}{
			"success": true,
			"domain":  site.Domain,
			"enabled": true,
		},
		"Site %s enabled", site.Domain,
	)
}
