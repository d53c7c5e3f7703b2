package reporting

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ssmendon/sdnprobe/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFExporterExport(t *testing.T) {
	exporter := NewPDFExporter()

	sessions := []domain.ProbeResult{
		{
			SessionID:   "s1",
			Timestamp:   time.Now().Add(-time.Hour),
			AttackerIP:  "10.0.0.1",
			ServerIP:    "10.0.0.2",
			HardTimeout: 30,
			IdleTimeout: 10,
			Category:    domain.CategoryBoth,
		},
		{
			SessionID:   "s2",
			Timestamp:   time.Now(),
			AttackerIP:  "10.0.0.1",
			ServerIP:    "10.0.0.3",
			HardTimeout: 0,
			IdleTimeout: 5,
			Category:    domain.CategoryIdleOnly,
		},
	}

	path := filepath.Join(t.TempDir(), "summary.pdf")
	err := exporter.Export(context.Background(), sessions, path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPDFExporterExportEmpty(t *testing.T) {
	exporter := NewPDFExporter()
	path := filepath.Join(t.TempDir(), "empty.pdf")
	err := exporter.Export(context.Background(), nil, path)
	require.NoError(t, err)
}
