package table

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/uyouii/cohort-analytics/common"
	"github.com/uyouii/cohort-analytics/model"
)

// Frame is a Table backed by a gota DataFrame.
type Frame struct {
	df dataframe.DataFrame
}

func NewFrame(df dataframe.DataFrame) (*Frame, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("build frame: %w", df.Err)
	}
	return &Frame{df: df}, nil
}

// FromRecords builds a frame from a header row followed by data rows,
// detecting column types.
func FromRecords(records [][]string, options ...dataframe.LoadOption) (*Frame, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("records need a header and at least one row: %w", common.ErrorInvalidValue)
	}
	return NewFrame(dataframe.LoadRecords(records, options...))
}

func (f *Frame) DataFrame() dataframe.DataFrame {
	return f.df
}

func (f *Frame) Len() int {
	return f.df.Nrow()
}

func (f *Frame) Names() []string {
	return f.df.Names()
}

func (f *Frame) has(column string) bool {
	for _, name := range f.df.Names() {
		if name == column {
			return true
		}
	}
	return false
}

func (f *Frame) col(column string) (series.Series, error) {
	if !f.has(column) {
		return series.Series{}, common.ColumnError(common.ErrorColumnNotFound, column)
	}
	s := f.df.Col(column)
	if s.Err != nil {
		return series.Series{}, fmt.Errorf("column %q: %w", column, s.Err)
	}
	return s, nil
}

func (f *Frame) Kind(column string) (model.ColumnKind, error) {
	s, err := f.col(column)
	if err != nil {
		return 0, err
	}
	return kindOf(s.Type()), nil
}

func kindOf(t series.Type) model.ColumnKind {
	switch t {
	case series.Int, series.Float:
		return model.Numeric
	case series.Bool:
		return model.Boolean
	}
	return model.Categorical
}

func (f *Frame) Floats(column string) ([]float64, error) {
	s, err := f.col(column)
	if err != nil {
		return nil, err
	}
	if kindOf(s.Type()) == model.Categorical {
		return nil, common.ColumnError(common.ErrorColumnType, column)
	}
	return s.Float(), nil
}

func (f *Frame) Strings(column string) ([]string, error) {
	s, err := f.col(column)
	if err != nil {
		return nil, err
	}
	res := s.Records()
	for i := range res {
		if s.Elem(i).IsNA() {
			res[i] = ""
		}
	}
	return res, nil
}

func (f *Frame) Subset(rows []int) Table {
	return &Frame{df: f.df.Subset(rows)}
}

// Drop returns a frame without columns, typically unique identifiers.
func (f *Frame) Drop(columns ...string) (*Frame, error) {
	for _, column := range columns {
		if !f.has(column) {
			return nil, common.ColumnError(common.ErrorColumnNotFound, column)
		}
	}
	return NewFrame(f.df.Drop(columns))
}

// Rename returns a frame with columns renamed old -> new.
func (f *Frame) Rename(names map[string]string) (*Frame, error) {
	olds := make([]string, 0, len(names))
	for old := range names {
		olds = append(olds, old)
	}
	sort.Strings(olds)

	df := f.df
	for _, old := range olds {
		if !f.has(old) {
			return nil, common.ColumnError(common.ErrorColumnNotFound, old)
		}
		df = df.Rename(names[old], old)
	}
	return NewFrame(df)
}

// NormalizeName trims, lower-cases and replaces '-' and ' ' with '_',
// so "No-show" becomes "no_show".
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("-", "_", " ", "_").Replace(name)
}

func (f *Frame) NormalizeNames() (*Frame, error) {
	names := map[string]string{}
	seen := map[string]string{}
	for _, name := range f.df.Names() {
		normalized := NormalizeName(name)
		if prev, ok := seen[normalized]; ok {
			return nil, fmt.Errorf("columns %q and %q both normalize to %q: %w",
				prev, name, normalized, common.ErrorInvalidValue)
		}
		seen[normalized] = name
		if normalized != name {
			names[name] = normalized
		}
	}
	return f.Rename(names)
}

// DropMissing keeps the rows where none of columns is missing. With no
// columns every column is checked.
func (f *Frame) DropMissing(columns ...string) (*Frame, error) {
	if len(columns) == 0 {
		columns = f.df.Names()
	}
	cols := make([]series.Series, 0, len(columns))
	for _, column := range columns {
		s, err := f.col(column)
		if err != nil {
			return nil, err
		}
		cols = append(cols, s)
	}

	rows := []int{}
	for i := 0; i < f.df.Nrow(); i++ {
		missing := false
		for _, s := range cols {
			if s.Elem(i).IsNA() {
				missing = true
				break
			}
		}
		if !missing {
			rows = append(rows, i)
		}
	}
	return NewFrame(f.df.Subset(rows))
}

// Filter keeps the rows whose column equals value, see Equal.
func (f *Frame) Filter(column, value string) (*Frame, error) {
	res, err := Equal(f, column, value)
	if err != nil {
		return nil, err
	}
	return res.(*Frame), nil
}

// AsNumeric converts column to float, values that do not parse become NaN.
func (f *Frame) AsNumeric(column string) (*Frame, error) {
	s, err := f.col(column)
	if err != nil {
		return nil, err
	}
	if s.Type() == series.Float {
		return f, nil
	}
	return NewFrame(f.df.Mutate(series.New(s.Float(), series.Float, column)))
}

func (f *Frame) WriteCSV(w io.Writer) error {
	return f.df.WriteCSV(w)
}
