// Package reporting renders a batch of probe sessions into an executive
// summary PDF, for handing the derived timeout categories to someone who
// won't read the CSV.
package reporting

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/ssmendon/sdnprobe/internal/core/domain"
	"github.com/ssmendon/sdnprobe/internal/core/ports"
)

// PDFExporter renders domain.ProbeResult batches to a PDF file.
type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Export writes an executive summary of sessions to path.
func (e *PDFExporter) Export(ctx context.Context, sessions []domain.ProbeResult, path string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, len(sessions))
	e.addCategoryBreakdown(pdf, sessions)
	e.addSessionTable(pdf, sessions)
	e.addFooter(pdf)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("reporting: create %s: %w", path, err)
	}
	defer f.Close()

	if err := pdf.Output(f); err != nil {
		return fmt.Errorf("reporting: render pdf: %w", err)
	}
	return nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, total int) {
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 15, "SDN Timeout Inference Summary", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Sessions: %d", total), "", 1, "L", false, 0, "")
	pdf.Ln(8)
}

var categoryLabel = map[domain.AttackCategory]string{
	domain.CategoryNoTimeout: "No timeout",
	domain.CategoryHardOnly:  "Hard timeout only",
	domain.CategoryIdleOnly:  "Idle timeout only",
	domain.CategoryBoth:      "Hard + idle timeout",
}

func (e *PDFExporter) addCategoryBreakdown(pdf *gofpdf.Fpdf, sessions []domain.ProbeResult) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Category Breakdown", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	counts := map[domain.AttackCategory]int{}
	for _, s := range sessions {
		counts[s.Category]++
	}

	pdf.SetFont("Arial", "", 11)
	for _, cat := range []domain.AttackCategory{domain.CategoryNoTimeout, domain.CategoryHardOnly, domain.CategoryIdleOnly, domain.CategoryBoth} {
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(90, 7, categoryLabel[cat]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(0, 102, 204)
		pdf.CellFormat(0, 7, fmt.Sprintf("%d", counts[cat]), "", 1, "R", false, 0, "")
		pdf.SetFont("Arial", "", 11)
	}
	pdf.Ln(8)
}

func (e *PDFExporter) addSessionTable(pdf *gofpdf.Fpdf, sessions []domain.ProbeResult) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Sessions", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(sessions) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No sessions recorded", "", 1, "L", false, 0, "")
		return
	}

	sorted := make([]domain.ProbeResult, len(sessions))
	copy(sorted, sessions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.After(sorted[j].Timestamp) })

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(35, 8, "Server", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Hard (s)", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 8, "Idle (s)", "1", 0, "C", true, 0, "")
	pdf.CellFormat(55, 8, "Category", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Time", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 8)
	for _, s := range sorted {
		if pdf.GetY() > 270 {
			pdf.AddPage()
		}
		pdf.CellFormat(35, 7, s.ServerIP, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", s.HardTimeout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", s.IdleTimeout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(55, 7, categoryLabel[s.Category], "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, s.Timestamp.Format("01-02 15:04"), "1", 1, "C", false, 0, "")
	}
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf) {
	pdf.SetY(-20)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, "Ground truth for reported timeouts was never consulted during probing.", "", 1, "C", false, 0, "")
}

var _ ports.ReportExporter = (*PDFExporter)(nil)
