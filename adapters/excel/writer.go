package excel

import (
	"log"
	"time"

	"github.com/xuri/excelize/v2"

	"incidentscope/internal/analysis"
	"incidentscope/internal/errors"
)

// Workbook sheet names of the exported analysis file.
const (
	sheetOverview    = "Overview"
	sheetTypes       = "Incident Types"
	sheetCities      = "Cities"
	sheetResponse    = "Response Times"
	sheetDataQuality = "Data Quality"
)

// WorkbookWriter exports computed statistics as a multi-sheet Excel workbook.
type WorkbookWriter struct{}

// NewWorkbookWriter creates a workbook writer.
func NewWorkbookWriter() *WorkbookWriter {
	return &WorkbookWriter{}
}

// Write builds the workbook and saves it to path. hist carries the response
// time histogram bins for the Response Times sheet and may be nil.
func (w *WorkbookWriter) Write(path string, s *analysis.Summary, q *analysis.QualityReport, hist []analysis.HistogramBin) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetOverview)
	w.writeOverview(f, s)

	if _, err := f.NewSheet(sheetTypes); err != nil {
		return errors.Wrap(err, "failed to create sheet")
	}
	w.writeBreakdown(f, sheetTypes, "Incident Type", s.TypeBreakdown)

	if _, err := f.NewSheet(sheetCities); err != nil {
		return errors.Wrap(err, "failed to create sheet")
	}
	w.writeBreakdown(f, sheetCities, "City", s.TopCities)

	if _, err := f.NewSheet(sheetResponse); err != nil {
		return errors.Wrap(err, "failed to create sheet")
	}
	w.writeResponse(f, s, hist)

	if _, err := f.NewSheet(sheetDataQuality); err != nil {
		return errors.Wrap(err, "failed to create sheet")
	}
	w.writeQuality(f, q)

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to save workbook %s", path)
	}
	log.Printf("[WorkbookWriter] workbook saved to %s", path)
	return nil
}

func (w *WorkbookWriter) writeOverview(f *excelize.File, s *analysis.Summary) {
	rows := [][]any{
		{"Metric", "Value"},
		{"Total Incidents", s.TotalIncidents},
		{"Date Range Start", dateCell(s.DateStart)},
		{"Date Range End", dateCell(s.DateEnd)},
		{"Unique Cities", s.UniqueCities},
		{"Unique ZIP Codes", s.UniqueZipCodes},
		{"Unique Incident Types", s.UniqueTypes},
		{"Total Casualties", int(s.TotalCasualties)},
		{"Incidents with Casualties", s.IncidentsWithCasualties},
		{"Transported by EMS", s.TransportedByEMS},
		{"Patient Refusal Rate (%)", s.RefusalRate},
	}
	writeRows(f, sheetOverview, rows)
	setColumnWidths(f, sheetOverview, 2, 26)
}

func (w *WorkbookWriter) writeBreakdown(f *excelize.File, sheet, label string, items []analysis.CountItem) {
	rows := [][]any{{label, "Incidents", "Percentage"}}
	for _, item := range items {
		rows = append(rows, []any{item.Label, item.Count, item.Percentage})
	}
	writeRows(f, sheet, rows)
	setColumnWidths(f, sheet, 3, 22)
}

func (w *WorkbookWriter) writeResponse(f *excelize.File, s *analysis.Summary, hist []analysis.HistogramBin) {
	rows := [][]any{
		{"Metric", "Minutes"},
		{"Count", s.Response.Count},
		{"Mean", s.Response.Mean},
		{"Median", s.Response.Median},
		{"Min", s.Response.Min},
		{"Max", s.Response.Max},
		{"90th Percentile", s.Response.P90},
		{"Std Dev", s.Response.StdDev},
	}
	if len(hist) > 0 {
		rows = append(rows, []any{}, []any{"Bin Low", "Bin High", "Incidents"})
		for _, bin := range hist {
			rows = append(rows, []any{bin.Low, bin.High, bin.Count})
		}
	}
	writeRows(f, sheetResponse, rows)
	setColumnWidths(f, sheetResponse, 3, 20)
}

func (w *WorkbookWriter) writeQuality(f *excelize.File, q *analysis.QualityReport) {
	rows := [][]any{{"Field", "Type", "Completeness (%)", "Missing (%)", "Unique Values"}}
	for _, field := range q.Fields {
		rows = append(rows, []any{
			field.Name, field.DataType, field.Completeness, field.MissingPct, field.UniqueCount,
		})
	}
	writeRows(f, sheetDataQuality, rows)
	setColumnWidths(f, sheetDataQuality, 5, 22)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) {
	for i, row := range rows {
		for j, value := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			f.SetCellValue(sheet, cell, value)
		}
	}
}

func setColumnWidths(f *excelize.File, sheet string, columns int, width float64) {
	for i := 1; i <= columns; i++ {
		col, _ := excelize.ColumnNumberToName(i)
		f.SetColWidth(sheet, col, col, width)
	}
}

func dateCell(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("2006-01-02")
}
