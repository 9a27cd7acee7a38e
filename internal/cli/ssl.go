package cli

import (
	"github.com/sitectl/sitectl/internal/lifecycle"
	"github.com/sitectl/sitectl/internal/output"
	"github.com/spf13/cobra"
)

var (
	sslEmail string
	sslWWW   bool
)

var sslCmd = &cobra.Command{
	Use:   "ssl <domain>",
	Short: "Obtain a certificate and switch the site to HTTPS",
	Long: `Bootstrap HTTPS for a site. The site is first served over plain HTTP
with the ACME challenge path exposed, then a certificate is requested
from Let's Encrypt through certbot. Only once the certificate material
is on disk does the configuration switch to HTTPS. If issuance fails
the site keeps serving HTTP.

Examples:
  sitectl ssl example.com --email ops@example.com
  sitectl ssl example.com --www`,
	Args: cobra.ExactArgs(1),
	RunE: runSSL,
}

func init() {
	sslCmd.Flags().StringVar(&sslEmail, "email", "", "Email for the Let's Encrypt account")
	sslCmd.Flags().BoolVar(&sslWWW, "www", false, "Give the www name its own redirect server block")

	rootCmd.AddCommand(sslCmd)
}

func runSSL(cmd *cobra.Command, args []string) error {
	site, err := newSite(args[0], sslWWW)
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

	email := sslEmail
	if email == "" {
		email = c.settings.Email
	}
	if email == "" {
		output.Warn("No email configured; registering with Let's Encrypt without a recovery address")
	}

	output.Info("Bootstrapping HTTPS for %s...", site.Domain)
	state, err := c.newBootstrapper().Bootstrap(cmd.Context(), site, email)
	if err != nil {
		if state == lifecycle.StateFailed {
			output.Warn("The site keeps serving plain HTTP; fix the issue and run ssl again")
		}
		return err
	}

	return outputResult(
		map[string]interface{}{
			"success": true,
			"domain":  site.Domain,
			"state":   string(state),
		},
		"Site %s is serving HTTPS", site.Domain,
	)
}
