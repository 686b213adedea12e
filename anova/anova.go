package anova

import (
	"fmt"

	"github.com/uyouii/cohort-analytics/common"
	"github.com/uyouii/cohort-analytics/model"
	"github.com/uyouii/cohort-analytics/table"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// OneWay runs a one-way analysis of variance over samples, one per group.
// Empty samples are ignored.
func OneWay(samples [][]float64) (*model.AnovaResult, error) {
	groups := make([][]float64, 0, len(samples))
	for _, sample := range samples {
		if len(sample) > 0 {
			groups = append(groups, sample)
		}
	}
	if len(groups) < MinGroups {
		return nil, fmt.Errorf("%d group(s): %w", len(groups), common.ErrorTooFewGroups)
	}

	n := 0
	total := 0.0
	for i, group := range groups {
		if len(group) < MinGroupObservations {
			return nil, fmt.Errorf("group %d has %d observation(s): %w",
				i, len(group), common.ErrorTooFewObservations)
		}
		n += len(group)
		total += floats.Sum(group)
	}
	grandMean := total / float64(n)

	var ssBetween, ssWithin float64
	for _, group := range groups {
		mean := stat.Mean(group, nil)
		ssBetween += float64(len(group)) * (mean - grandMean) * (mean - grandMean)
		for _, v := range group {
			ssWithin += (v - mean) * (v - mean)
		}
	}
	if ssWithin == 0 {
		return nil, common.ErrorZeroVariance
	}

	dfBetween := len(groups) - 1
	dfWithin := n - len(groups)
	f := (ssBetween / float64(dfBetween)) / (ssWithin / float64(dfWithin))
	dist := distuv.F{D1: float64(dfBetween), D2: float64(dfWithin)}

	return &model.AnovaResult{
		Groups:       len(groups),
		Observations: n,
		SSBetween:    ssBetween,
		SSWithin:     ssWithin,
		DFBetween:    dfBetween,
		DFWithin:     dfWithin,
		F:            f,
		P:            dist.Survival(f),
	}, nil
}

// Partitioned runs OneWay over the outcome of each group of groupCol.
func Partitioned(t table.Table, groupCol, outcomeCol string) (*model.AnovaResult, error) {
	kind, err := t.Kind(outcomeCol)
	if err != nil {
		return nil, err
	}
	if kind != model.Numeric {
		return nil, common.ColumnError(common.ErrorColumnType, outcomeCol)
	}
	partition, err := table.Partition(t, groupCol, outcomeCol)
	if err != nil {
		return nil, err
	}
	res, err := OneWay(partition.Ordered())
	if err != nil {
		return nil, fmt.Errorf("%s by %s: %w", outcomeCol, groupCol, err)
	}
	return res, nil
}

// GroupAnova tests whether the mean of outcomeCol differs between the groups
// of groupCol and returns the F statistic and its p-value.
func GroupAnova(t table.Table, groupCol, outcomeCol string) (float64, float64, error) {
	res, err := Partitioned(t, groupCol, outcomeCol)
	if err != nil {
		return 0, 0, err
	}
	return res.F, res.P, nil
}
