// Package commands implements the wmap-probe cobra CLI: probe, experiment,
// observe, and report, following the teacher's rootCmd/init()/Execute
// structure (adapted from the pack's gobfdctl rather than the teacher
// itself, which favors plain flag for its single-purpose binaries).
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssmendon/sdnprobe/internal/config"
)

// cfg is the resolved configuration for the invoked subcommand, built in
// PersistentPreRunE from the environment defaults overridden by whichever
// persistent flags the user set.
var cfg *config.Config

var (
	flagIface        string
	flagAttackerIP   string
	flagServerIP     string
	flagAddr         string
	flagMock         bool
	flagDBPath       string
	flagPcapPath     string
	flagResultsCSV   string
	flagDebug        bool
	flagRTTTimeoutMS int
	flagProbeSamples int
	flagRyuAddr      string
	flagDPID         string
)

var rootCmd = &cobra.Command{
	Use:   "wmap-probe",
	Short: "SDN flow-table timeout inference and exhaustion tool",
	Long: "wmap-probe infers OpenFlow idle/hard flow timeouts through a MAC-address\n" +
		"timing side channel and drives the minimum packet rate needed to\n" +
		"exhaust a switch's flow table once the timeout configuration is known.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.FromEnv()
		cfg.Interface = flagIface
		cfg.AttackerIP = flagAttackerIP
		cfg.ServerIP = flagServerIP
		cfg.Addr = flagAddr
		cfg.MockMode = flagMock
		cfg.DBPath = flagDBPath
		cfg.PcapPath = flagPcapPath
		cfg.ResultsCSV = flagResultsCSV
		cfg.Debug = flagDebug
		cfg.RTTTimeoutMS = flagRTTTimeoutMS
		cfg.ProbeSamples = flagProbeSamples
		cfg.RyuController = flagRyuAddr
		cfg.DPID = flagDPID

		if cfg.Debug {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	defaults := config.FromEnv()

	rootCmd.PersistentFlags().StringVar(&flagIface, "iface", defaults.Interface, "network interface to send/receive probes on")
	rootCmd.PersistentFlags().StringVar(&flagAttackerIP, "attacker-ip", defaults.AttackerIP, "attacker-controlled source IP")
	rootCmd.PersistentFlags().StringVar(&flagServerIP, "server-ip", defaults.ServerIP, "victim server IP behind the SDN switch")
	rootCmd.PersistentFlags().StringVar(&flagAddr, "addr", defaults.Addr, "live status HTTP server address")
	rootCmd.PersistentFlags().BoolVar(&flagMock, "mock", defaults.MockMode, "use the deterministic in-memory transport instead of raw sockets")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", defaults.DBPath, "path to the sqlite session history database")
	rootCmd.PersistentFlags().StringVar(&flagPcapPath, "pcap", defaults.PcapPath, "pcap capture path; stored in the config but read by no subcommand, so no capture is written")
	rootCmd.PersistentFlags().StringVar(&flagResultsCSV, "results", defaults.ResultsCSV, "path to the append-only results CSV")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", defaults.Debug, "enable verbose debug logging")
	rootCmd.PersistentFlags().IntVar(&flagRTTTimeoutMS, "rtt-timeout-ms", defaults.RTTTimeoutMS, "per-probe reply timeout in milliseconds")
	rootCmd.PersistentFlags().IntVar(&flagProbeSamples, "probe-samples", defaults.ProbeSamples, "RTT samples drawn per probe batch")
	rootCmd.PersistentFlags().StringVar(&flagRyuAddr, "ryu-addr", defaults.RyuController, "Ryu ofctl_rest base URL, ground truth only")
	rootCmd.PersistentFlags().StringVar(&flagDPID, "dpid", defaults.DPID, "datapath ID queried for ground-truth flow counts")

	rootCmd.AddCommand(probeCmd())
	rootCmd.AddCommand(experimentCmd())
	rootCmd.AddCommand(observeCmd())
	rootCmd.AddCommand(reportCmd())
}

// Execute runs the root command under ctx and returns the process exit
// code: 0 on success, 1 on argument or run error. spec.md documents -1 for
// the argument-error case; os.Exit takes a raw status byte and POSIX
// truncates negative codes mod 256, so this follows the teacher's own CLI
// convention of small positive codes instead (recorded as an Open Question
// resolution in DESIGN.md, not a semantic change).
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
