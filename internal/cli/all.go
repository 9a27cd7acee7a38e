package cli

import (
	"github.com/sitectl/sitectl/internal/output"
	"github.com/spf13/cobra"
)

var (
	allEmail string
	allWWW   bool
)

var allCmd = &cobra.Command{
	Use:   "all <domain>",
	Short: "Run the full lifecycle: generate, publish, enable, ssl",
	Long: `Take a domain from nothing to a live HTTPS site in one command:
generate the configuration, publish it, enable it with an isolated
validation and bootstrap the certificate.

Examples:
  sitectl all example.com --email ops@example.com
  sitectl all example.com --www`,
	Args: cobra.ExactArgs(1),
	RunE: runAll,
}

func init() {
	allCmd.Flags().StringVar(&allEmail, "email", "", "Email for the Let's Encrypt account")
	allCmd.Flags().BoolVar(&allWWW, "www", false, "Give the www name its own redirect server block")

	rootCmd.AddCommand(allCmd)
}

func runAll(cmd *cobra.Command, args []string) error {
	site, err := newSite(args[0], allWWW)
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

	output.Info("Generating configuration for %s...", site.Domain)
	if _, err := c.gen.Stage(site, false); err != nil {
		return err
	}
	if err := provisionContentDir(c.settings.ContentDir(site.Domain), site.Domain); err != nil {
		return err
	}

	output.Info("Publishing...")
	if err := c.reg.Publish(site.Domain); err != nil {
		return err
	}

	output.Info("Enabling with isolated validation...")
	if err := c.validator.Validate(site.Domain); err != nil {
		return err
	}

	email := allEmail
	if email == "" {
		email = c.settings.Email
	}

	output.Info("Bootstrapping HTTPS...")
	state, err := c.newBootstrapper().Bootstrap(cmd.Context(), site, email)
	if err != nil {
		return err
	}

	return outputResult(
		map[string]interface{}{
			"success": true,
			"domain":  site.Domain,
			"state":   string(state),
		},
		"Site %s is live", site.Domain,
	)
}
