package commands

import (
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/spf13/cobra"
)

var experimentScript string

// experimentCmd shells out to the Mininet Python harness for the external
// topology-setup responsibility spec.md's Non-goals name: standing up
// network namespaces and OpenFlow switches from Go is out of this module's
// domain, the same way the teacher's cmd/cve_loader shells out rather than
// reimplementing its seed source in Go.
func experimentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experiment [-- topology-args...]",
		Short: "Stand up the Mininet testbed and run the idle/hard timeout experiment scripts",
		Long: "experiment invokes the Mininet topology and experiment scripts that\n" +
			"originally drove this tool's probing and attack modules, so a full\n" +
			"end-to-end run can be reproduced without a separate Python invocation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			run := exec.CommandContext(cmd.Context(), "python3", append([]string{experimentScript}, args...)...)
			output, err := run.CombinedOutput()
			slog.Info("experiment: mininet harness finished", "output", string(output))
			if err != nil {
				return fmt.Errorf("experiment: mininet harness failed: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&experimentScript, "script", "mn/experiment.py", "path to the Mininet experiment harness")
	return cmd
}
