package risk

import (
	"fmt"

	"github.com/uyouii/cohort-analytics/common"
	"github.com/uyouii/cohort-analytics/model"
	"github.com/uyouii/cohort-analytics/table"
)

// Compare computes the risk of outcome inside exposed and unexposed and
// their ratio. The outcome column must be binary, rows with a missing
// outcome label are ignored.
func Compare(t table.Table, exposed, unexposed Cohort, outcome model.Coding) (*model.RelativeRisk, error) {
	if err := checkBinary(t, outcome.Column); err != nil {
		return nil, err
	}
	labels, err := t.Strings(outcome.Column)
	if err != nil {
		return nil, err
	}
	inExposed, err := exposed.Members(t)
	if err != nil {
		return nil, err
	}
	inUnexposed, err := unexposed.Members(t)
	if err != nil {
		return nil, err
	}

	counts := model.Contingency{}
	for i, label := range labels {
		if label == "" {
			continue
		}
		present := outcome.Code(label) == model.OutcomePresent
		if inExposed[i] {
			if present {
				counts.ExposedPresent++
			} else {
				counts.ExposedAbsent++
			}
		}
		if inUnexposed[i] {
			if present {
				counts.UnexposedPresent++
			} else {
				counts.UnexposedAbsent++
			}
		}
	}

	if counts.Exposed() == 0 {
		return nil, fmt.Errorf("cohort %s: %w", exposed, common.ErrorEmptyGroup)
	}
	if counts.Unexposed() == 0 {
		return nil, fmt.Errorf("cohort %s: %w", unexposed, common.ErrorEmptyGroup)
	}

	res := &model.RelativeRisk{
		Table:         counts,
		ExposedRisk:   float64(counts.ExposedPresent) / float64(counts.Exposed()),
		UnexposedRisk: float64(counts.UnexposedPresent) / float64(counts.Unexposed()),
	}
	if res.UnexposedRisk == 0 {
		return nil, fmt.Errorf("cohort %s has no %s == %s: %w",
			unexposed, outcome.Column, outcome.Positive, common.ErrorZeroRisk)
	}
	res.Ratio = res.ExposedRisk / res.UnexposedRisk
	return res, nil
}

// Binary splits a two-valued column into the cohort labelled positive and
// the cohort holding the other label.
func Binary(t table.Table, column, positive string) (Cohort, Cohort, error) {
	values, err := table.Distinct(t, column)
	if err != nil {
		return nil, nil, err
	}
	if len(values) > 2 {
		return nil, nil, common.ColumnError(
			fmt.Errorf("%d distinct values: %w", len(values), common.ErrorNotBinary), column)
	}

	other := ""
	found := false
	for _, v := range values {
		if v == positive {
			found = true
		} else {
			other = v
		}
	}
	if !found {
		return nil, nil, common.ColumnError(
			fmt.Errorf("no row labelled %q: %w", positive, common.ErrorEmptyGroup), column)
	}
	if other == "" {
		return nil, nil, common.ColumnError(
			fmt.Errorf("only %q present, no reference group: %w", positive, common.ErrorEmptyGroup), column)
	}
	return Level{Column: column, Value: positive}, Level{Column: column, Value: other}, nil
}

func checkBinary(t table.Table, column string) error {
	values, err := table.Distinct(t, column)
	if err != nil {
		return err
	}
	if len(values) > 2 {
		return common.ColumnError(
			fmt.Errorf("%d distinct values: %w", len(values), common.ErrorNotBinary), column)
	}
	return nil
}

// RelativeRisk returns P(outcome | group == positiveGroup) divided by
// P(outcome | group != positiveGroup). Both columns must be binary.
func RelativeRisk(t table.Table, groupCol, outcomeCol,
	positiveGroup, positiveOutcome string) (float64, error) {
	exposed, unexposed, err := Binary(t, groupCol, positiveGroup)
	if err != nil {
		return 0, err
	}
	res, err := Compare(t, exposed, unexposed, model.Coding{Column: outcomeCol, Positive: positiveOutcome})
	if err != nil {
		return 0, err
	}
	return res.Ratio, nil
}
