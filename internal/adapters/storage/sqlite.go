// Package storage holds the supplemental structured history store: every
// probe session and its derived attack category, queryable after the fact
// by the report exporter. This is in addition to, not instead of, the
// append-only results CSV in internal/adapters/results.
package storage

import (
	"context"
	"time"

	"github.com/ssmendon/sdnprobe/internal/core/domain"
	"github.com/ssmendon/sdnprobe/internal/core/ports"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// SessionModel is the GORM model for a single probe session result.
type SessionModel struct {
	SessionID   string `gorm:"primaryKey"`
	Timestamp   time.Time
	AttackerIP  string `gorm:"index"`
	ServerIP    string `gorm:"index"`
	HardTimeout int
	IdleTimeout int
	Category    int
}

// SQLiteAdapter implements ports.SessionRepository using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// NewSQLiteAdapter opens path (creating it if absent), migrates the session
// schema, and tunes SQLite for a single-writer probing workload.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&SessionModel{}); err != nil {
		return nil, err
	}

	if err := db.Use(tracing.NewPlugin()); err != nil {
		return nil, err
	}

	// WAL mode allows simultaneous readers alongside the probe run's writer.
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA busy_timeout=5000;")
	db.Exec("PRAGMA synchronous=NORMAL;")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_sessions_timestamp ON session_models(timestamp)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_sessions_category ON session_models(category)")

	return &SQLiteAdapter{db: db}, nil
}

// SaveSession upserts a probe result keyed by session ID.
func (a *SQLiteAdapter) SaveSession(ctx context.Context, result domain.ProbeResult) error {
	model := SessionModel{
		SessionID:   result.SessionID,
		Timestamp:   result.Timestamp,
		AttackerIP:  result.AttackerIP,
		ServerIP:    result.ServerIP,
		HardTimeout: result.HardTimeout,
		IdleTimeout: result.IdleTimeout,
		Category:    int(result.Category),
	}
	return a.db.WithContext(ctx).Save(&model).Error
}

// ListSessions returns the most recent sessions, newest first, capped at
// limit (0 means no limit).
func (a *SQLiteAdapter) ListSessions(ctx context.Context, limit int) ([]domain.ProbeResult, error) {
	query := a.db.WithContext(ctx).Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []SessionModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	results := make([]domain.ProbeResult, len(models))
	for i, m := range models {
		results[i] = domain.ProbeResult{
			SessionID:   m.SessionID,
			Timestamp:   m.Timestamp,
			AttackerIP:  m.AttackerIP,
			ServerIP:    m.ServerIP,
			HardTimeout: m.HardTimeout,
			IdleTimeout: m.IdleTimeout,
			Category:    domain.AttackCategory(m.Category),
		}
	}
	return results, nil
}

func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ ports.SessionRepository = (*SQLiteAdapter)(nil)
