package cli

import (
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish <domain>",
	Short: "Publish a staged configuration to sites-available",
	Long: `Copy the staged configuration for the domain into the server's
sites-available directory. Publishing does not enable the site; use
enable for that.

Examples:
  sitectl publish example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	site, err := newSite(args[0], false)
	if err != nil {
		return err
	}
	if err := requireRoot(); err != nil {
		return err
	}

	c, err := buildComponents()
	if err != nil {
		return err
	}

	if err := c.reg.Publish(site.Domain); err != nil {
		return err
	}

	return outputResult(
		map[string]interface{}{
			"success":   true,
			"domain":    site.Domain,
			"published": c.reg.AvailablePath(site.Domain),
		},
		"Configuration for %s published", site.Domain,
	)
}
