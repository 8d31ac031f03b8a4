package report

import (
	"encoding/json"
	"os"
	"path/filepath"

	"incidentscope/internal/errors"
)

// Output file names written under the output directory.
const (
	AnalysisReportFile  = "analysis_report.md"
	DatabaseSummaryJSON = "database_summary.json"
	DatabaseSummaryFile = "database_summary.md"
)

// Writer persists generated reports under a single output directory.
type Writer struct {
	dir string
}

// NewWriter creates a report writer; the directory is created on first write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// WriteMarkdown writes a markdown report to the named file.
func (w *Writer) WriteMarkdown(filename string, r *Report) (string, error) {
	path, err := w.prepare(filename)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(r.Markdown), 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write report %s", filename)
	}
	return path, nil
}

// WriteJSON writes any serializable value to the named file, indented.
func (w *Writer) WriteJSON(filename string, v any) (string, error) {
	path, err := w.prepare(filename)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", errors.Wrapf(err, "failed to encode %s", filename)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", filename)
	}
	return path, nil
}

func (w *Writer) prepare(filename string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create output dir %s", w.dir)
	}
	return filepath.Join(w.dir, filename), nil
}
