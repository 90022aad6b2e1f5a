package workbook

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"planfact/internal/logger"
	"planfact/internal/report"
	"planfact/pkg/services"
)

// Writer saves reports as .xlsx files.
type Writer struct {
	path string
	log  zerolog.Logger
}

// NewWriter creates a writer that saves to path.
func NewWriter(path string) *Writer {
	return &Writer{path: path, log: logger.WithComponent("workbook")}
}

// WriteReport implements services.ReportWriter.
func (w *Writer) WriteReport(ctx context.Context, r *services.Report) error {
	const op = "WriteReport"

	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := Build(r)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("%s: saving %s: %w", op, w.path, err)
	}

	w.log.Info().
		Str("path", w.path).
		Int("balances", len(r.Balances)).
		Int("unmatched", len(r.Unmatched)).
		Int("issues", len(r.Issues)).
		Msg("Report workbook saved")
	return nil
}

// WriteTo streams the report workbook to out.
func WriteTo(out io.Writer, r *services.Report) error {
	f, err := Build(r)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(out)
	return err
}

// Build lays r out as a workbook with one sheet per report table.
func Build(r *services.Report) (*excelize.File, error) {
	const op = "Build"

	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E5E5E5"}},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: header style: %w", op, err)
	}

	for i, tbl := range report.Tables(r) {
		if err := writeTable(f, i, tbl, bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: sheet %s: %w", op, tbl.Name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeTable(f *excelize.File, index int, tbl report.Table, headerStyle int) error {
	if index == 0 {
		if err := f.SetSheetName(f.GetSheetName(0), tbl.Name); err != nil {
			return err
		}
	} else if _, err := f.NewSheet(tbl.Name); err != nil {
		return err
	}

	headers := make([]interface{}, len(tbl.Headers))
	for i, h := range tbl.Headers {
		headers[i] = h
	}
	if err := f.SetSheetRow(tbl.Name, "A1", &headers); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(tbl.Headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(tbl.Name, "A1", last, headerStyle); err != nil {
		return err
	}
	if err := f.SetPanes(tbl.Name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	for i, row := range tbl.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(tbl.Name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
