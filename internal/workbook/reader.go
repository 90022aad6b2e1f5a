// Package workbook reads source rows from and writes reports to local
// .xlsx files.
package workbook

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"planfact/internal/logger"
	"planfact/pkg/services"
)

// ErrNoSheets is returned for a workbook without worksheets.
var ErrNoSheets = errors.New("workbook has no sheets")

// Reader serves rows from one workbook. Cells are read raw: dates arrive as
// Excel serials and amounts without display formatting.
type Reader struct {
	file *excelize.File
	name string
	log  zerolog.Logger
}

// Open opens the workbook at path.
func Open(path string) (*Reader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("workbook.Open: %s: %w", path, err)
	}
	return newReader(f, path), nil
}

// OpenReader reads a workbook from r. name is used in logs only.
func OpenReader(r io.Reader, name string) (*Reader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("workbook.OpenReader: %s: %w", name, err)
	}
	return newReader(f, name), nil
}

func newReader(f *excelize.File, name string) *Reader {
	return &Reader{
		file: f,
		name: name,
		log:  logger.WithComponent("workbook").With().Str("file", name).Logger(),
	}
}

// ReadRows returns the rows of sheet. Single-table exports often carry a
// default sheet name, so when sheet does not exist the first sheet is read.
func (r *Reader) ReadRows(ctx context.Context, sheet string) ([][]string, error) {
	const op = "ReadRows"

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	list := r.file.GetSheetList()
	if len(list) == 0 {
		return nil, fmt.Errorf("%s: %s: %w", op, r.name, ErrNoSheets)
	}

	target := list[0]
	for _, name := range list {
		if name == sheet {
			target = name
			break
		}
	}
	if target != sheet {
		r.log.Debug().Str("requested", sheet).Str("sheet", target).Msg("Sheet not found, reading first sheet")
	}

	rows, err := r.file.GetRows(target, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%s: %s!%s: %w", op, r.name, target, err)
	}

	r.log.Debug().Str("sheet", target).Int("rows", len(rows)).Msg("Read workbook rows")
	return rows, nil
}

// Close releases the workbook.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Routes sends each sheet name to its own source, so invoices and credit
// notes can come from separate files.
type Routes map[string]services.RowSource

// ReadRows implements services.RowSource.
func (rt Routes) ReadRows(ctx context.Context, sheet string) ([][]string, error) {
	src, ok := rt[sheet]
	if !ok {
		return nil, fmt.Errorf("no source for sheet %q", sheet)
	}
	return src.ReadRows(ctx, sheet)
}
