package ports

import (
	"context"

	"github.com/ssmendon/sdnprobe/internal/core/domain"
)

// ResultsRepository appends discovered (hard, idle) timeout pairs to the
// persisted results store, the CSV state from spec.md §6.
type ResultsRepository interface {
	Append(ctx context.Context, result domain.ProbeResult) error
}

// SessionRepository is the supplemental structured history store (sqlite via
// gorm): every probe session and its derived attack category, queryable
// after the fact by the report exporter.
type SessionRepository interface {
	SaveSession(ctx context.Context, result domain.ProbeResult) error
	ListSessions(ctx context.Context, limit int) ([]domain.ProbeResult, error)
	Close() error
}

// ReportExporter renders a batch of probe sessions into an executive
// summary document.
type ReportExporter interface {
	Export(ctx context.Context, sessions []domain.ProbeResult, path string) error
}

// FlowStatsObserver queries the SDN controller's aggregate flow-table stats
// for ground truth during evaluation. It is never consulted by the probing
// or attack path itself (spec.md §5 Non-goals).
type FlowStatsObserver interface {
	AggregateFlowCount(ctx context.Context, dpid string) (int, error)
}
