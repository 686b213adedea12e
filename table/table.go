package table

import (
	"fmt"
	"strconv"

	"github.com/uyouii/cohort-analytics/common"
	"github.com/uyouii/cohort-analytics/model"
)

// Table is the capability set the analyses need. Implementations must not
// mutate themselves: Subset returns a new table.
type Table interface {
	Len() int
	Names() []string
	Kind(column string) (model.ColumnKind, error)
	// Floats returns the column as numbers, missing values are NaN.
	Floats(column string) ([]float64, error)
	// Strings returns the column as labels, missing values are "".
	Strings(column string) ([]string, error)
	Subset(rows []int) Table
}

// Where returns the rows of t for which keep reports true.
func Where(t Table, keep func(row int) bool) Table {
	rows := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	return t.Subset(rows)
}

// Equal returns the rows of t whose column equals value. Numeric columns
// compare as numbers, so "100" matches 100.0; missing values never match.
func Equal(t Table, column, value string) (Table, error) {
	kind, err := t.Kind(column)
	if err != nil {
		return nil, err
	}
	if kind == model.Numeric {
		want, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, common.ColumnError(
				fmt.Errorf("%q is not a number: %w", value, common.ErrorInvalidValue), column)
		}
		values, err := t.Floats(column)
		if err != nil {
			return nil, err
		}
		return Where(t, func(row int) bool { return values[row] == want }), nil
	}

	labels, err := t.Strings(column)
	if err != nil {
		return nil, err
	}
	return Where(t, func(row int) bool { return labels[row] != "" && labels[row] == value }), nil
}

// Partition groups the numeric outcomeCol by the labels of groupCol. Rows
// with a missing group label or a NaN outcome are skipped.
func Partition(t Table, groupCol, outcomeCol string) (*model.GroupPartition, error) {
	groups, err := t.Strings(groupCol)
	if err != nil {
		return nil, err
	}
	outcomes, err := t.Floats(outcomeCol)
	if err != nil {
		return nil, err
	}

	partition := model.NewGroupPartition()
	for i, group := range groups {
		if group == "" || outcomes[i] != outcomes[i] {
			continue
		}
		partition.Add(group, outcomes[i])
	}
	return partition, nil
}

// Distinct returns the non-missing labels of column in first-seen order.
func Distinct(t Table, column string) ([]string, error) {
	values, err := t.Strings(column)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	res := []string{}
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		res = append(res, v)
	}
	return res, nil
}
