package cli

import (
	"os"
	"path/filepath"

	"github.com/sitectl/sitectl/internal/errors"
	"github.com/sitectl/sitectl/internal/output"
	"github.com/spf13/cobra"
)

var generateWWW bool

var generateCmd = &cobra.Command{
	Use:   "generate <domain>",
	Short: "Generate and stage a site configuration",
	Long: `Generate an nginx server configuration for the domain and stage it
locally. The HTTPS variant is produced automatically once a certificate
exists for the domain; until then the configuration serves plain HTTP
with the ACME challenge path exposed.

Examples:
  sitectl generate example.com
  sitectl generate example.com --www`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVar(&generateWWW, "www", false, "Give the www name its own redirect server block")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	site, err := newSite(args[0], generateWWW)
	if err != nil {
		return err
	}

	c, err := buildComponents()
	if err != nil {
		return err
	}

	httpsAvailable := c.certs.HasCert(site.Domain)
	path, err := c.gen.Stage(site, httpsAvailable)
	if err != nil {
		return err
	}

	if err := provisionContentDir(c.settings.ContentDir(site.Domain), site.Domain); err != nil {
		return err
	}

	variant := "http"
	if httpsAvailable {
		variant = "https"
	}

	return outputResult(
		map[string]interface{}{
			"success": true,
			"domain":  site.Domain,
			"staged":  path,
			"variant": variant,
		},
		"Configuration for %s staged at %s", site.Domain, path,
	)
}

// provisionContentDir creates the site's document root with a placeholder
// page. An existing index file is left alone.
func provisionContentDir(dir, domain string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create content directory", err)
	}
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err == nil {
		return nil
	}
	page := "<!DOCTYPE html>\n<html>\n<head><title>" + domain + "</title></head>\n" +
		"<body><h1>" + domain + "</h1><p>This site is being set up.</p></body>\n</html>\n"
	if err := os.WriteFile(index, []byte(page), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to write placeholder index", err)
	}
	output.Info("Created %s", index)
	return nil
}
