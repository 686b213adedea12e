package summary

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/uyouii/cohort-analytics/common"
	"github.com/uyouii/cohort-analytics/iqr"
	"github.com/uyouii/cohort-analytics/model"
	"github.com/uyouii/cohort-analytics/table"
)

// Describe summarizes a numeric column. Std is the sample standard
// deviation and is NaN for a single value.
func Describe(t table.Table, column string) (*model.Summary, error) {
	kind, err := t.Kind(column)
	if err != nil {
		return nil, err
	}
	if kind == model.Categorical {
		return nil, common.ColumnError(common.ErrorColumnType, column)
	}
	values, err := t.Floats(column)
	if err != nil {
		return nil, err
	}

	data := stats.Float64Data(iqr.SortedFinite(values))
	if data.Len() == 0 {
		return nil, common.ColumnError(common.ErrorEmptyInput, column)
	}

	res := &model.Summary{
		Column:  column,
		Count:   data.Len(),
		Missing: len(values) - data.Len(),
		Std:     math.NaN(),
	}
	if res.Mean, err = data.Mean(); err != nil {
		return nil, err
	}
	if data.Len() > 1 {
		if res.Std, err = data.StandardDeviationSample(); err != nil {
			return nil, err
		}
	}
	if res.Min, err = data.Min(); err != nil {
		return nil, err
	}
	if res.Max, err = data.Max(); err != nil {
		return nil, err
	}
	res.Q1 = iqr.Quantile(data, 0.25)
	res.Median = iqr.Quantile(data, 0.5)
	res.Q3 = iqr.Quantile(data, 0.75)
	return res, nil
}

// DescribeAll summarizes every non-categorical column.
func DescribeAll(t table.Table) ([]*model.Summary, error) {
	res := []*model.Summary{}
	for _, column := range t.Names() {
		kind, err := t.Kind(column)
		if err != nil {
			return nil, err
		}
		if kind == model.Categorical {
			continue
		}
		s, err := Describe(t, column)
		if common.IsDomainError(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, nil
}
