package summary

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/cohort-analytics/common"
	"github.com/uyouii/cohort-analytics/model"
	"github.com/uyouii/cohort-analytics/table"
)

func schools(t *testing.T) *table.Frame {
	t.Helper()
	frame, err := table.FromRecords([][]string{
		{"state", "type", "enroll"},
		{"Ohio", "Public", "1"},
		{"Ohio", "Private", "2"},
		{"Utah", "Public", "3"},
		{"Utah", "Public", "4"},
		{"Utah", "Charter", "NA"},
		{"Iowa", "NA", "5"},
	})
	require.NoError(t, err)
	return frame
}

func TestDescribe(t *testing.T) {
	s, err := Describe(schools(t), "enroll")
	require.NoError(t, err)
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 1, s.Missing)
	assert.InDelta(t, 3.0, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), s.Std, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 2.0, s.Q1)
	assert.Equal(t, 3.0, s.Median)
	assert.Equal(t, 4.0, s.Q3)
	assert.Equal(t, 5.0, s.Max)
}

func TestDescribeErrors(t *testing.T) {
	frame := schools(t)

	_, err := Describe(frame, "state")
	assert.ErrorIs(t, err, common.ErrorColumnType)

	_, err = Describe(frame, "mmr")
	assert.ErrorIs(t, err, common.ErrorColumnNotFound)
}

func TestDescribeAllSkipsCategorical(t *testing.T) {
	frame, err := table.FromRecords([][]string{
		{"state", "enroll", "mmr"},
		{"Ohio", "10", "95.5"},
		{"Utah", "30", "90"},
	})
	require.NoError(t, err)

	res, err := DescribeAll(frame)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "enroll", res[0].Column)
	assert.Equal(t, "mmr", res[1].Column)
	assert.InDelta(t, 92.75, res[1].Mean, 1e-12)
}

func TestValueCounts(t *testing.T) {
	counts, err := ValueCounts(schools(t), "type")
	require.NoError(t, err)
	assert.Equal(t, []model.ValueCount{
		{Value: "Public", Count: 3},
		{Value: "Charter", Count: 1},
		{Value: "Private", Count: 1},
	}, counts)

	assert.Equal(t, counts[:1], Top(counts, 1))
	assert.Equal(t, counts, Top(counts, 0))
	assert.Equal(t, counts, Top(counts, 10))
}

func TestCrossTab(t *testing.T) {
	tab, err := CrossTab(schools(t), "state", "type")
	require.NoError(t, err)
	require.Len(t, tab, 2)

	assert.Equal(t, "Ohio", tab[0].Group)
	assert.Equal(t, 2, tab[0].Total)
	assert.Equal(t, "Utah", tab[1].Group)
	assert.Equal(t, []model.ValueCount{
		{Value: "Public", Count: 2},
		{Value: "Charter", Count: 1},
	}, tab[1].Counts)

	_, err = CrossTab(schools(t), "county", "type")
	assert.ErrorIs(t, err, common.ErrorColumnNotFound)
}
