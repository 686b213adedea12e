package anova

const (
	DefaultAlpha = 0.05

	MinGroups            = 2
	MinGroupObservations = 2
)
