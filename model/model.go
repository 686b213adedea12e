package model

import (
	"fmt"
	"strings"
)

type ColumnKind int

const (
	Categorical ColumnKind = 1
	Numeric     ColumnKind = 2
	Boolean     ColumnKind = 3
)

func (k ColumnKind) String() string {
	switch k {
	case Categorical:
		return "categorical"
	case Numeric:
		return "numeric"
	case Boolean:
		return "boolean"
	}
	return fmt.Sprintf("ColumnKind(%d)", int(k))
}

// Outcome is the coded value of a binary outcome column. Raw labels such as
// "Yes"/"No" are mapped through a Coding instead of being recoded to strings.
type Outcome int

const (
	OutcomeAbsent  Outcome = 0
	OutcomePresent Outcome = 1
)

func (o Outcome) String() string {
	if o == OutcomePresent {
		return "present"
	}
	return "absent"
}

// Coding maps the raw labels of Column to an Outcome: the label equal to
// Positive (case-insensitive, surrounding blanks ignored) is OutcomePresent,
// anything else OutcomeAbsent.
type Coding struct {
	Column   string `json:"column"`
	Positive string `json:"positive"`
}

func (c Coding) Code(raw string) Outcome {
	if strings.EqualFold(strings.TrimSpace(raw), strings.TrimSpace(c.Positive)) {
		return OutcomePresent
	}
	return OutcomeAbsent
}

// GroupPartition holds the outcome values of each group, keys in first-seen order.
type GroupPartition struct {
	Keys    []string
	Samples map[string][]float64
}

func NewGroupPartition() *GroupPartition {
	return &GroupPartition{
		Keys:    []string{},
		Samples: map[string][]float64{},
	}
}

func (p *GroupPartition) Add(key string, value float64) {
	if _, ok := p.Samples[key]; !ok {
		p.Keys = append(p.Keys, key)
	}
	p.Samples[key] = append(p.Samples[key], value)
}

// Ordered returns the samples in key order.
func (p *GroupPartition) Ordered() [][]float64 {
	res := make([][]float64, 0, len(p.Keys))
	for _, key := range p.Keys {
		res = append(res, p.Samples[key])
	}
	return res
}

type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// GroupCounts is the value counts of an outcome inside one group.
type GroupCounts struct {
	Group  string       `json:"group"`
	Total  int          `json:"total"`
	Counts []ValueCount `json:"counts"`
}
