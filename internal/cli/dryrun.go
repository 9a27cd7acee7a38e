package cli

import "github.com/sitectl/sitectl/internal/output"

// DryRunOperation describes one action a command would take.
type DryRunOperation struct {
	Action string `json:"action"`
	Target string `json:"target"`
	Detail string `json:"detail,omitempty"`
}

// DryRunResult is the JSON shape for --dry-run output.
type DryRunResult struct {
	DryRun     bool              `json:"dry_run"`
	Domain     string            `json:"domain"`
	Operations []DryRunOperation `json:"operations"`
}

// outputDryRun prints the operations a command would perform.
func outputDryRun(domain string, ops []DryRunOperation) error {
	if jsonOutput {
		return output.JSON(DryRunResult{DryRun: true, Domain: domain, Operations: ops})
	}
	output.Info("Dry run for %s, no changes made:", domain)
	for _, op := range ops {
		if op.Detail != "" {
			output.Print("  %s %s (%s)", op.Action, op.Target, op.Detail)
		} else {
			output.Print("  %s %s", op.Action, op.Target)
		}
	}
	return nil
}
