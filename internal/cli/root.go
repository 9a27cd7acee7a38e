package cli

import (
	"os"

	"github.com/sitectl/sitectl/internal/errors"
	"github.com/sitectl/sitectl/internal/logger"
	"github.com/sitectl/sitectl/internal/output"
	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	verbose    bool
	version    = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sitectl",
	Short: "Static site hosting lifecycle CLI",
	Long: `sitectl manages the full hosting lifecycle of static sites on an
nginx host: configuration generation, publication, isolated validation,
certificate bootstrap through Let's Encrypt and teardown.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	// Initialize logger based on verbose flag (parsed by cobra)
	cobra.OnInitialize(func() {
		logger.Init(verbose)
	})

	if err := rootCmd.Execute(); err != nil {
		var siteErr *errors.SiteError
		if errors.As(err, &siteErr) {
			output.Error("%s", siteErr.Message)
			if siteErr.Hint != "" {
				output.Info("%s", siteErr.Hint)
			}
		} else {
			output.Error("%v", err)
		}
		os.Exit(1)
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
}
