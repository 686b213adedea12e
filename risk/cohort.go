package risk

import (
	"fmt"
	"math"
	"strings"

	"github.com/uyouii/cohort-analytics/common"
	"github.com/uyouii/cohort-analytics/table"
)

// Cohort selects the rows of a table that belong to a group of subjects.
type Cohort interface {
	Members(t table.Table) ([]bool, error)
	String() string
}

// Level selects rows whose Column label equals Value.
type Level struct {
	Column string
	Value  string
}

func (c Level) Members(t table.Table) ([]bool, error) {
	labels, err := t.Strings(c.Column)
	if err != nil {
		return nil, err
	}
	res := make([]bool, len(labels))
	for i, label := range labels {
		res[i] = label != "" && label == c.Value
	}
	return res, nil
}

func (c Level) String() string {
	return fmt.Sprintf("%s == %s", c.Column, c.Value)
}

// Range selects rows with Min <= Column < Max. A NaN bound is open.
type Range struct {
	Column string
	Min    float64
	Max    float64
}

// AtLeast selects Column >= min.
func AtLeast(column string, min float64) Range {
	return Range{Column: column, Min: min, Max: math.NaN()}
}

func (c Range) Members(t table.Table) ([]bool, error) {
	if !math.IsNaN(c.Min) && !math.IsNaN(c.Max) && c.Min >= c.Max {
		return nil, fmt.Errorf("range %s: %w", c, common.ErrorInvalidValue)
	}
	values, err := t.Floats(c.Column)
	if err != nil {
		return nil, err
	}
	res := make([]bool, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		res[i] = (math.IsNaN(c.Min) || v >= c.Min) && (math.IsNaN(c.Max) || v < c.Max)
	}
	return res, nil
}

func (c Range) String() string {
	switch {
	case math.IsNaN(c.Max):
		return fmt.Sprintf("%s >= %v", c.Column, c.Min)
	case math.IsNaN(c.Min):
		return fmt.Sprintf("%s < %v", c.Column, c.Max)
	}
	return fmt.Sprintf("%v <= %s < %v", c.Min, c.Column, c.Max)
}

type allOf []Cohort

// AllOf selects rows belonging to every cohort.
func AllOf(cohorts ...Cohort) Cohort {
	return allOf(cohorts)
}

func (c allOf) Members(t table.Table) ([]bool, error) {
	res := make([]bool, t.Len())
	for i := range res {
		res[i] = true
	}
	for _, cohort := range c {
		members, err := cohort.Members(t)
		if err != nil {
			return nil, err
		}
		for i := range res {
			res[i] = res[i] && members[i]
		}
	}
	return res, nil
}

func (c allOf) String() string {
	parts := make([]string, 0, len(c))
	for _, cohort := range c {
		parts = append(parts, "("+cohort.String()+")")
	}
	return strings.Join(parts, " and ")
}

type not struct {
	Cohort
}

// Not selects rows outside c. Rows where c cannot tell (missing values)
// are still excluded.
func Not(c Cohort) Cohort {
	return not{c}
}

func (c not) Members(t table.Table) ([]bool, error) {
	members, err := c.Cohort.Members(t)
	if err != nil {
		return nil, err
	}
	known, err := known(t, c.Cohort)
	if err != nil {
		return nil, err
	}
	res := make([]bool, len(members))
	for i := range members {
		res[i] = known[i] && !members[i]
	}
	return res, nil
}

func (c not) String() string {
	return "not (" + c.Cohort.String() + ")"
}

// known reports the rows where every column c reads is present.
func known(t table.Table, c Cohort) ([]bool, error) {
	res := make([]bool, t.Len())
	for i := range res {
		res[i] = true
	}
	for _, column := range columns(c) {
		labels, err := t.Strings(column)
		if err != nil {
			return nil, err
		}
		for i, label := range labels {
			res[i] = res[i] && label != ""
		}
	}
	return res, nil
}

func columns(c Cohort) []string {
	switch v := c.(type) {
	case Level:
		return []string{v.Column}
	case Range:
		return []string{v.Column}
	case allOf:
		res := []string{}
		for _, cohort := range v {
			res = append(res, columns(cohort)...)
		}
		return res
	case not:
		return columns(v.Cohort)
	}
	return nil
}
