package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssmendon/sdnprobe/internal/adapters/observer"
)

// observeCmd polls the SDN controller's ground-truth aggregate flow count,
// for manual correlation against probe results. It is never consulted by
// probe or experiment themselves (spec.md §5 Non-goals).
func observeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "observe <dpid>",
		Short: "Query the Ryu controller's ground-truth aggregate flow count for a datapath",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dpid := cfg.DPID
			if len(args) == 1 {
				dpid = args[0]
			}

			obs := observer.NewRyuObserver(cfg.RyuController)
			count, err := obs.AggregateFlowCount(cmd.Context(), dpid)
			if err != nil {
				return fmt.Errorf("observe: %w", err)
			}

			fmt.Printf("datapath %s: %d flows installed\n", dpid, count)
			return nil
		},
	}
}
