package summary

import (
	"sort"

	"github.com/uyouii/cohort-analytics/model"
	"github.com/uyouii/cohort-analytics/table"
)

func sortCounts(counts map[string]int) []model.ValueCount {
	res := make([]model.ValueCount, 0, len(counts))
	for value, count := range counts {
		res = append(res, model.ValueCount{Value: value, Count: count})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Count != res[j].Count {
			return res[i].Count > res[j].Count
		}
		return res[i].Value < res[j].Value
	})
	return res
}

// ValueCounts counts the labels of column, most frequent first. Missing
// labels are not counted.
func ValueCounts(t table.Table, column string) ([]model.ValueCount, error) {
	labels, err := t.Strings(column)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, label := range labels {
		if label != "" {
			counts[label]++
		}
	}
	return sortCounts(counts), nil
}

// Top returns at most n of the most frequent labels.
func Top(counts []model.ValueCount, n int) []model.ValueCount {
	if n <= 0 || n >= len(counts) {
		return counts
	}
	return counts[:n]
}

// CrossTab counts the labels of outcomeCol inside each group of groupCol,
// groups sorted by label.
func CrossTab(t table.Table, groupCol, outcomeCol string) ([]model.GroupCounts, error) {
	groups, err := t.Strings(groupCol)
	if err != nil {
		return nil, err
	}
	outcomes, err := t.Strings(outcomeCol)
	if err != nil {
		return nil, err
	}

	byGroup := map[string]map[string]int{}
	for i, group := range groups {
		if group == "" || outcomes[i] == "" {
			continue
		}
		if byGroup[group] == nil {
			byGroup[group] = map[string]int{}
		}
		byGroup[group][outcomes[i]]++
	}

	keys := make([]string, 0, len(byGroup))
	for group := range byGroup {
		keys = append(keys, group)
	}
	sort.Strings(keys)

	res := make([]model.GroupCounts, 0, len(keys))
	for _, group := range keys {
		counts := sortCounts(byGroup[group])
		total := 0
		for _, c := range counts {
			total += c.Count
		}
		res = append(res, model.GroupCounts{Group: group, Total: total, Counts: counts})
	}
	return res, nil
}
