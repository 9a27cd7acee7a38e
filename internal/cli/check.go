package cli

import (
	"github.com/sitectl/sitectl/internal/errors"
	"github.com/sitectl/sitectl/internal/health"
	"github.com/sitectl/sitectl/internal/output"
	"github.com/spf13/cobra"
)

var checkStrict bool

var checkCmd = &cobra.Command{
	Use:   "check <domain>",
	Short: "Check the health of a deployed site",
	Long: `Run the full probe suite against a site: DNS resolution, registry
state, server liveness, configuration validity, HTTP and HTTPS
reachability and certificate freshness.

Examples:
  sitectl check example.com
  sitectl check example.com --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Treat a failing configuration test as fatal even when the site is serving")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	site, err := newSite(args[0], false)
	if err != nil {
		return err
	}

	c, err := buildComponents()
	if err != nil {
		return err
	}

	report := c.newChecker(checkStrict).Check(cmd.Context(), site)

	if jsonOutput {
		if err := output.JSON(report); err != nil {
			return err
		}
	} else {
		printReport(report)
	}

	if !report.Healthy() {
		return errors.Wrap(errors.ErrCodeInternal, "health check failed", nil)
	}
	return nil
}

func printReport(report *health.Report) {
	rows := make([][]string, 0, len(report.Probes))
	for _, p := range report.Probes {
		rows = append(rows, []string{p.Name, string(p.Status), p.Detail})
	}
	output.Table([]string{"PROBE", "STATUS", "DETAIL"}, rows)
	if report.Healthy() {
		output.Success("%s is healthy", report.Domain)
	} else {
		output.Error("%s has %d failing check(s)", report.Domain, report.FailCount())
	}
}
