// Package results implements the append-only CSV results file from
// spec.md §6: three columns, no header, one row per completed probe.
package results

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/ssmendon/sdnprobe/internal/core/domain"
	"github.com/ssmendon/sdnprobe/internal/core/ports"
)

// CSVRepository appends (timestamp, hard_timeout, idle_timeout) rows to a
// single results file, creating it if it does not yet exist.
type CSVRepository struct {
	path string
	mu   sync.Mutex
}

// NewCSVRepository builds a repository writing to path.
func NewCSVRepository(path string) *CSVRepository {
	return &CSVRepository{path: path}
}

// Append writes one row for result to the CSV file, per spec.md §6: a
// human-readable timestamp, the integer hard timeout, the integer idle
// timeout.
func (r *CSVRepository) Append(ctx context.Context, result domain.ProbeResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("results: open %s: %w", r.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	row := []string{
		result.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		strconv.Itoa(result.HardTimeout),
		strconv.Itoa(result.IdleTimeout),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("results: write row: %w", err)
	}
	w.Flush()
	return w.Error()
}

var _ ports.ResultsRepository = (*CSVRepository)(nil)
