package survey

import (
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// Source yields survey rows one at a time. Next returns io.EOF after the
// last row. Sources are not safe for concurrent use.
type Source interface {
	Next() (Row, error)
	Close() error
}

// SliceSource serves hand-authored fixture rows. The seed entry point and
// tests use it to push rows through the same pipeline as real files.
type SliceSource struct {
	rows []Row
	next int
}

// NewSliceSource builds a source from a header row and records.
func NewSliceSource(header []string, records [][]string) *SliceSource {
	h := MapHeader(header)
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = NewRow(h, rec)
	}
	return &SliceSource{rows: rows}
}

func (s *SliceSource) Next() (Row, error) {
	if s.next >= len(s.rows) {
		return Row{}, io.EOF
	}
	r := s.rows[s.next]
	s.next++
	return r, nil
}

func (s *SliceSource) Close() error { return nil }

// XLSXSource reads rows from a survey workbook.
type XLSXSource struct {
	sheet  *xlsx.Sheet
	header Header
	next   int
}

// OpenXLSX opens a workbook and positions the source on the first data
// row. sheetName selects a sheet by name; empty means the first sheet.
func OpenXLSX(path, sheetName string) (*XLSXSource, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "survey: open xlsx %s", path)
	}

	var sheet *xlsx.Sheet
	if sheetName != "" {
		s, ok := f.Sheet[sheetName]
		if !ok {
			return nil, eris.Errorf("survey: sheet %q not found in %s", sheetName, path)
		}
		sheet = s
	} else {
		if len(f.Sheets) == 0 {
			return nil, eris.Errorf("survey: workbook %s has no sheets", path)
		}
		sheet = f.Sheets[0]
	}

	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("survey: sheet in %s has no header row", path)
	}

	return &XLSXSource{
		sheet:  sheet,
		header: MapHeader(cellStrings(sheet.Rows[0])),
		next:   1,
	}, nil
}

func (s *XLSXSource) Next() (Row, error) {
	if s.next >= len(s.sheet.Rows) {
		return Row{}, io.EOF
	}
	row := s.sheet.Rows[s.next]
	s.next++
	return NewRow(s.header, cellStrings(row)), nil
}

func (s *XLSXSource) Close() error { return nil }

func cellStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = cell.String()
	}
	return cells
}

// CSVSource reads rows from a CSV or TXT export of the survey.
type CSVSource struct {
	r       *csv.Reader
	header  Header
	closer  io.Closer
	skipped int
}

// OpenCSV opens a CSV file and consumes its header row.
func OpenCSV(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "survey: open csv %s", path)
	}

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	head, err := reader.Read()
	if err != nil {
		_ = f.Close()
		return nil, eris.Wrapf(err, "survey: read csv header %s", path)
	}

	return &CSVSource{r: reader, header: MapHeader(head), closer: f}, nil
}

// Next skips lines the CSV parser rejects; suppressed values inside
// well-formed lines are the field parser's concern, not the source's.
// Any other reader error is systemic and returned to the caller, which
// aborts the run.
func (s *CSVSource) Next() (Row, error) {
	for {
		record, err := s.r.Read()
		if err == nil {
			return NewRow(s.header, record), nil
		}
		if errors.Is(err, io.EOF) {
			return Row{}, io.EOF
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			s.skipped++
			zap.L().Warn("skipping malformed csv line",
				zap.Int("line", parseErr.Line), zap.Error(err))
			continue
		}
		return Row{}, eris.Wrap(err, "survey: read csv row")
	}
}

// Skipped returns the number of malformed lines dropped so far.
func (s *CSVSource) Skipped() int { return s.skipped }

func (s *CSVSource) Close() error { return s.closer.Close() }
