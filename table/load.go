package table

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/uyouii/cohort-analytics/common"
	"github.com/uyouii/cohort-analytics/model"
	"github.com/xuri/excelize/v2"
)

type LoadOptions struct {
	// Delimiter for delimited text, ',' when zero.
	Delimiter rune
	// NaNValues are the labels read as missing, gota's defaults when empty.
	NaNValues []string
	// Kinds forces the kind of some columns instead of detecting it.
	Kinds map[string]model.ColumnKind
	// Sheet of a workbook, the first sheet when empty.
	Sheet string
}

func (o LoadOptions) gota() []dataframe.LoadOption {
	options := []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
	}
	if o.Delimiter != 0 {
		options = append(options, dataframe.WithDelimiter(o.Delimiter))
	}
	if len(o.NaNValues) > 0 {
		options = append(options, dataframe.NaNValues(o.NaNValues))
	}
	if len(o.Kinds) > 0 {
		types := map[string]series.Type{}
		for column, kind := range o.Kinds {
			switch kind {
			case model.Numeric:
				types[column] = series.Float
			case model.Boolean:
				types[column] = series.Bool
			default:
				types[column] = series.String
			}
		}
		options = append(options, dataframe.WithTypes(types))
	}
	return options
}

func ReadCSV(r io.Reader, opts LoadOptions) (*Frame, error) {
	df := dataframe.ReadCSV(r, opts.gota()...)
	if df.Err != nil {
		return nil, fmt.Errorf("read csv: %w", df.Err)
	}
	return NewFrame(df)
}

// ReadXLSX loads one sheet of a workbook. The first row is the header.
func ReadXLSX(path string, opts LoadOptions) (*Frame, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer book.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets: %w", path, common.ErrorInvalidValue)
		}
		sheet = sheets[0]
	}

	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %s needs a header and at least one row: %w", sheet, common.ErrorInvalidValue)
	}

	// trailing empty cells are omitted by excelize
	width := len(rows[0])
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > width {
			row = row[:width]
		}
		record := make([]string, width)
		copy(record, row)
		records = append(records, record)
	}
	return NewFrame(dataframe.LoadRecords(records, opts.gota()...))
}

// LoadFile picks the reader from the file extension: .csv, .tsv or .xlsx.
func LoadFile(path string, opts LoadOptions) (*Frame, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(path, opts)
	case ".csv", ".tsv", ".txt":
		if strings.EqualFold(filepath.Ext(path), ".tsv") && opts.Delimiter == 0 {
			opts.Delimiter = '\t'
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return ReadCSV(file, opts)
	}
	return nil, fmt.Errorf("%s: %w", path, common.ErrorUnsupported)
}
