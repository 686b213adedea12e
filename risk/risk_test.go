package risk

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/cohort-analytics/common"
	"github.com/uyouii/cohort-analytics/model"
	"github.com/uyouii/cohort-analytics/table"
)

// cohortFrame has, per group, total rows of which positive attended.
func cohortFrame(t *testing.T, groups map[string][2]int) *table.Frame {
	t.Helper()
	records := [][]string{{"group", "attended", "age"}}
	for _, group := range []string{"A", "B", "C"} {
		counts, ok := groups[group]
		if !ok {
			continue
		}
		for i := 0; i < counts[0]; i++ {
			attended := "No"
			if i < counts[1] {
				attended = "Yes"
			}
			records = append(records, []string{group, attended, strconv.Itoa(i)})
		}
	}
	frame, err := table.FromRecords(records)
	require.NoError(t, err)
	return frame
}

func TestRelativeRisk(t *testing.T) {
	frame := cohortFrame(t, map[string][2]int{"A": {100, 80}, "B": {100, 40}})

	rr, err := RelativeRisk(frame, "group", "attended", "A", "Yes")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, rr, 1e-12)

	rr, err = RelativeRisk(frame, "group", "attended", "B", "Yes")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, rr, 1e-12)
}

func TestRelativeRiskSingleGroup(t *testing.T) {
	frame := cohortFrame(t, map[string][2]int{"A": {10, 5}})

	_, err := RelativeRisk(frame, "group", "attended", "A", "Yes")
	assert.ErrorIs(t, err, common.ErrorEmptyGroup)
	assert.True(t, common.IsDomainError(err))

	_, err = RelativeRisk(frame, "group", "attended", "B", "Yes")
	assert.True(t, common.IsDomainError(err))
}

func TestRelativeRiskZeroReferenceRisk(t *testing.T) {
	frame := cohortFrame(t, map[string][2]int{"A": {10, 5}, "B": {10, 0}})

	_, err := RelativeRisk(frame, "group", "attended", "A", "Yes")
	assert.ErrorIs(t, err, common.ErrorZeroRisk)
	assert.True(t, common.IsDomainError(err))
}

func TestRelativeRiskNotBinary(t *testing.T) {
	frame := cohortFrame(t, map[string][2]int{"A": {10, 5}, "B": {10, 2}, "C": {10, 1}})

	_, err := RelativeRisk(frame, "group", "attended", "A", "Yes")
	assert.ErrorIs(t, err, common.ErrorNotBinary)
	assert.True(t, common.IsInputError(err))

	_, err = RelativeRisk(frame, "attended", "age", "Yes", "1")
	assert.ErrorIs(t, err, common.ErrorNotBinary)

	_, err = RelativeRisk(frame, "sex", "attended", "F", "Yes")
	assert.ErrorIs(t, err, common.ErrorColumnNotFound)
}

func TestCompareContingency(t *testing.T) {
	frame := cohortFrame(t, map[string][2]int{"A": {4, 3}, "B": {8, 2}})

	res, err := Compare(frame, Level{"group", "A"}, Level{"group", "B"},
		model.Coding{Column: "attended", Positive: "yes"})
	require.NoError(t, err)
	assert.Equal(t, model.Contingency{
		ExposedPresent: 3, ExposedAbsent: 1, UnexposedPresent: 2, UnexposedAbsent: 6,
	}, res.Table)
	assert.InDelta(t, 0.75, res.ExposedRisk, 1e-12)
	assert.InDelta(t, 0.25, res.UnexposedRisk, 1e-12)
	assert.InDelta(t, 3.0, res.Ratio, 1e-12)
}

func TestCompareRanges(t *testing.T) {
	frame, err := table.FromRecords([][]string{
		{"age", "no_show"},
		{"70", "No"},
		{"80", "No"},
		{"66", "Yes"},
		{"30", "No"},
		{"20", "Yes"},
		{"15", "Yes"},
		{"40", "No"},
		{"5", "No"},
		{"NA", "No"},
	})
	require.NoError(t, err)

	res, err := Compare(frame, AtLeast("age", 65), Range{Column: "age", Min: 12, Max: 65},
		model.Coding{Column: "no_show", Positive: "No"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Table.Exposed())
	assert.Equal(t, 4, res.Table.Unexposed())
	assert.InDelta(t, (2.0/3.0)/(2.0/4.0), res.Ratio, 1e-12)

	_, err = Compare(frame, Range{Column: "age", Min: 65, Max: 12}, AtLeast("age", 0),
		model.Coding{Column: "no_show", Positive: "No"})
	assert.ErrorIs(t, err, common.ErrorInvalidValue)

	_, err = Compare(frame, AtLeast("age", 100), AtLeast("age", 0),
		model.Coding{Column: "no_show", Positive: "No"})
	assert.ErrorIs(t, err, common.ErrorEmptyGroup)
}

func TestCompareOutcomeNotBinary(t *testing.T) {
	frame, err := table.FromRecords([][]string{
		{"age", "visit"},
		{"70", "attended"},
		{"80", "missed"},
		{"30", "rescheduled"},
		{"20", "attended"},
	})
	require.NoError(t, err)

	_, err = Compare(frame, AtLeast("age", 65), Range{Column: "age", Min: 12, Max: 65},
		model.Coding{Column: "visit", Positive: "missed"})
	assert.ErrorIs(t, err, common.ErrorNotBinary)
	assert.True(t, common.IsInputError(err))

	_, err = Analyze(context.Background(), frame, AtLeast("age", 65), Not(AtLeast("age", 65)),
		model.Coding{Column: "visit", Positive: "missed"})
	assert.ErrorIs(t, err, common.ErrorNotBinary)
}

func TestCompareCombinedCohorts(t *testing.T) {
	frame, err := table.FromRecords([][]string{
		{"hypertension", "diabetes", "no_show"},
		{"1", "1", "No"},
		{"1", "1", "Yes"},
		{"1", "0", "No"},
		{"0", "1", "No"},
		{"0", "0", "No"},
		{"0", "0", "Yes"},
		{"0", "0", "Yes"},
		{"0", "0", "No"},
	})
	require.NoError(t, err)

	both := AllOf(Level{"hypertension", "1"}, Level{"diabetes", "1"})
	neither := AllOf(Not(Level{"hypertension", "1"}), Not(Level{"diabetes", "1"}))

	res, err := Compare(frame, both, neither, model.Coding{Column: "no_show", Positive: "No"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Table.Exposed())
	assert.Equal(t, 4, res.Table.Unexposed())
	assert.InDelta(t, 1.0, res.Ratio, 1e-12)
	assert.Equal(t, "(hypertension == 1) and (diabetes == 1)", both.String())
}

func TestAnalyze(t *testing.T) {
	frame := cohortFrame(t, map[string][2]int{"A": {100, 80}, "B": {100, 40}})

	res, err := AnalyzeBinary(context.Background(), frame, "group", "attended", "A", "Yes")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, res.Ratio, 1e-12)
	assert.InDelta(t, 0.8, res.ExposedRisk, 1e-12)

	_, err = AnalyzeBinary(context.Background(), frame, "group", "attended", "Z", "Yes")
	assert.True(t, common.IsDomainError(err))
}
