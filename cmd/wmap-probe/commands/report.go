package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssmendon/sdnprobe/internal/adapters/reporting"
	"github.com/ssmendon/sdnprobe/internal/core/domain"
	"github.com/ssmendon/sdnprobe/internal/core/services/attack"
)

var reportOutPath string

// reportCmd renders a results CSV into a PDF executive summary, grouping
// sessions by the attack category each (hard, idle) pair classifies to.
// The original Python tool has no equivalent; this reuses the teacher's
// reporting pipeline, one of its largest subsystems.
func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <csv_path>",
		Short: "Render a results CSV into a PDF executive summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			csvPath := args[0]
			sessions, err := loadResultsCSV(csvPath)
			if err != nil {
				return fmt.Errorf("report: %w", err)
			}

			outPath := reportOutPath
			if outPath == "" {
				outPath = strings.TrimSuffix(csvPath, ".csv") + ".pdf"
			}

			exporter := reporting.NewPDFExporter()
			if err := exporter.Export(cmd.Context(), sessions, outPath); err != nil {
				return fmt.Errorf("report: %w", err)
			}

			fmt.Printf("wrote %s (%d sessions)\n", outPath, len(sessions))
			return nil
		},
	}
	cmd.Flags().StringVar(&reportOutPath, "out", "", "output PDF path (defaults to the CSV path with a .pdf extension)")
	return cmd
}

// loadResultsCSV parses the append-only (timestamp, hard_timeout,
// idle_timeout) rows internal/adapters/results writes, re-deriving each
// row's attack category since the CSV itself, per spec.md §6, carries only
// the two timeout columns.
func loadResultsCSV(path string) ([]domain.ProbeResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	sessions := make([]domain.ProbeResult, 0, len(rows))
	for _, row := range rows {
		if len(row) != 3 {
			continue
		}
		ts, err := time.Parse("2006-01-02T15:04:05Z07:00", row[0])
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", row[0], err)
		}
		hard, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("parse hard timeout %q: %w", row[1], err)
		}
		idle, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("parse idle timeout %q: %w", row[2], err)
		}

		sessions = append(sessions, domain.ProbeResult{
			Timestamp:   ts,
			HardTimeout: hard,
			IdleTimeout: idle,
			Category:    attack.Classify(hard, idle),
		})
	}
	return sessions, nil
}
