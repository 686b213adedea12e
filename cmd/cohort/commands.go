package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/uyouii/cohort-analytics/anova"
	"github.com/uyouii/cohort-analytics/chart"
	"github.com/uyouii/cohort-analytics/common"
	"github.com/uyouii/cohort-analytics/iqr"
	"github.com/uyouii/cohort-analytics/kde"
	"github.com/uyouii/cohort-analytics/model"
	"github.com/uyouii/cohort-analytics/risk"
	"github.com/uyouii/cohort-analytics/summary"
	"github.com/uyouii/cohort-analytics/table"
	"github.com/uyouii/cohort-analytics/utils"
	"go.uber.org/zap"
)

// outputPath resolves a relative output path against the configured output dir.
func (a *app) outputPath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.cfg.OutputDir, path)
}

func (a *app) chartOptions(title, xLabel, yLabel string) chart.Options {
	opts := a.cfg.ChartOptions()
	opts.Title, opts.XLabel, opts.YLabel = title, xLabel, yLabel
	return opts
}

func newDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [columns...]",
		Short: "Count, mean, std, min, quartiles and max of numeric columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := a.load(cmd.Context())
			if err != nil {
				return err
			}

			var summaries []*model.Summary
			if len(args) == 0 {
				if summaries, err = summary.DescribeAll(frame); err != nil {
					return err
				}
			}
			for _, column := range args {
				s, err := summary.Describe(frame, column)
				if err != nil {
					return err
				}
				summaries = append(summaries, s)
			}

			out := cmd.OutOrStdout()
			if a.asJSON {
				type summaryJSON struct {
					*model.Summary
					Std *float64 `json:"std"`
				}
				res := make([]summaryJSON, 0, len(summaries))
				for _, s := range summaries {
					row := summaryJSON{Summary: s}
					if !math.IsNaN(s.Std) {
						std := s.Std
						row.Std = &std
					}
					res = append(res, row)
				}
				return a.printJSON(out, res)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "column\tcount\tmissing\tmean\tstd\tmin\t25%\t50%\t75%\tmax")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%v\t%v\t%v\t%v\t%v\t%v\n", s.Column, s.Count, s.Missing,
					utils.FormatFloat(s.Mean, 3), utils.FormatFloat(s.Std, 3), s.Min,
					utils.FormatFloat(s.Q1, 3), utils.FormatFloat(s.Median, 3), utils.FormatFloat(s.Q3, 3), s.Max)
			}
			return w.Flush()
		},
	}
}

func newCountsCmd(a *app) *cobra.Command {
	var by, chartFile string
	var top int

	cmd := &cobra.Command{
		Use:   "counts <column>",
		Short: "Value counts of a column, optionally within the groups of --by",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			column := args[0]
			out := cmd.OutOrStdout()

			if by == "" {
				counts, err := summary.ValueCounts(frame, column)
				if err != nil {
					return err
				}
				counts = summary.Top(counts, top)
				if chartFile != "" {
					labels, values := make([]string, len(counts)), make([]float64, len(counts))
					for i, c := range counts {
						labels[i], values[i] = c.Value, float64(c.Count)
					}
					opts := a.chartOptions("Value counts of "+column, column, "count")
					p, err := chart.Bar(labels, values, opts)
					if err != nil {
						return err
					}
					if err := chart.Save(p, opts, a.outputPath(chartFile)); err != nil {
						return err
					}
				}
				if a.asJSON {
					return a.printJSON(out, counts)
				}
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "%s\tcount\n", column)
				for _, c := range counts {
					fmt.Fprintf(w, "%s\t%d\n", c.Value, c.Count)
				}
				return w.Flush()
			}

			tab, err := summary.CrossTab(frame, by, column)
			if err != nil {
				return err
			}
			if chartFile != "" {
				if err := a.crossTabChart(tab, by, column, chartFile); err != nil {
					return err
				}
			}
			if a.asJSON {
				return a.printJSON(out, tab)
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\tcount\n", by, column)
			for _, group := range tab {
				for _, c := range group.Counts {
					fmt.Fprintf(w, "%s\t%s\t%d\n", group.Group, c.Value, c.Count)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&by, "by", "", "grouping column")
	cmd.Flags().IntVar(&top, "top", 0, "keep the n most frequent values (0 keeps all)")
	cmd.Flags().StringVar(&chartFile, "chart", "", "write a bar chart (stacked with --by) to this file")
	return cmd
}

// crossTabChart stacks one layer per outcome label on one bar per group.
func (a *app) crossTabChart(tab []model.GroupCounts, by, column, file string) error {
	groups := make([]string, len(tab))
	layers := map[string][]float64{}
	order := []string{}
	for i, group := range tab {
		groups[i] = group.Group
		for _, c := range group.Counts {
			if _, ok := layers[c.Value]; !ok {
				layers[c.Value] = make([]float64, len(tab))
				order = append(order, c.Value)
			}
			layers[c.Value][i] = float64(c.Count)
		}
	}
	series := make([]chart.Series, 0, len(order))
	for _, value := range order {
		series = append(series, chart.Series{Label: value, Values: layers[value]})
	}

	opts := a.chartOptions(fmt.Sprintf("%s by %s", column, by), by, "count")
	p, err := chart.StackedBar(groups, series, opts)
	if err != nil {
		return err
	}
	return chart.Save(p, opts, a.outputPath(file))
}

func newTrimCmd(a *app) *cobra.Command {
	var k float64
	var outFile, chartFile string

	cmd := &cobra.Command{
		Use:   "trim <column>",
		Short: "Drop rows outside Q1 - k*IQR and Q3 + k*IQR of a numeric column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			frame, err := a.load(ctx)
			if err != nil {
				return err
			}
			column := args[0]
			if !cmd.Flags().Changed("k") {
				k = a.cfg.FenceK
			}

			trimmed, fence, err := iqr.TrimColumn(ctx, frame, column, k)
			if err != nil {
				return err
			}

			if chartFile != "" {
				if err := a.trimChart(ctx, frame, trimmed, column, chartFile); err != nil {
					return err
				}
			}
			if outFile != "" {
				if err := writeCSV(a.outputPath(outFile), trimmed); err != nil {
					return err
				}
			}

			if a.asJSON {
				return a.printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"fence": fence, "rows": frame.Len(), "kept": trimmed.Len(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "q1=%v q3=%v iqr=%v lower=%v upper=%v rows=%d kept=%d\n",
				fence.Q1, fence.Q3, fence.IQR(), fence.Lower, fence.Upper, frame.Len(), trimmed.Len())
			return nil
		},
	}
	cmd.Flags().Float64Var(&k, "k", iqr.DefaultFenceMultiplier, "IQR multiplier (default COHORT_FENCE_K)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write the trimmed table as csv")
	cmd.Flags().StringVar(&chartFile, "chart", "", "write the density before and after trimming")
	return cmd
}

// trimChart draws the density of column before and after trimming. The
// "after" line is left out when the kept rows cannot carry an estimate.
func (a *app) trimChart(ctx context.Context, before, after table.Table, column, file string) error {
	estimate, err := kde.ColumnDensity(ctx, before, column, kde.DefaultBandWidthAdjust)
	if err != nil {
		return err
	}
	estimates := []*model.DensityEstimate{estimate}
	labels := []string{"before"}

	estimate, err = kde.ColumnDensity(ctx, after, column, kde.DefaultBandWidthAdjust)
	switch {
	case err == nil:
		estimates = append(estimates, estimate)
		labels = append(labels, "after")
	case common.IsDomainError(err):
		utils.GetLogger(ctx).Warn("no density after trimming", zap.String("column", column),
			zap.Int("kept", after.Len()), zap.Error(err))
	default:
		return err
	}

	opts := a.chartOptions("Density of "+column, column, "density")
	p, err := chart.Density(estimates, labels, opts)
	if err != nil {
		return err
	}
	return chart.Save(p, opts, a.outputPath(file))
}

func writeCSV(path string, t table.Table) (err error) {
	frame, ok := t.(*table.Frame)
	if !ok {
		return fmt.Errorf("%T cannot be written as csv: %w", t, common.ErrorUnsupported)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return frame.WriteCSV(f)
}

func newDensityCmd(a *app) *cobra.Command {
	var adjust float64
	var chartFile string

	cmd := &cobra.Command{
		Use:   "density <column>",
		Short: "Kernel density estimate of a numeric column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			estimate, err := kde.ColumnDensity(cmd.Context(), frame, args[0], adjust)
			if err != nil {
				return err
			}
			if chartFile != "" {
				opts := a.chartOptions("Density of "+args[0], args[0], "density")
				p, err := chart.Density([]*model.DensityEstimate{estimate}, []string{args[0]}, opts)
				if err != nil {
					return err
				}
				if err := chart.Save(p, opts, a.outputPath(chartFile)); err != nil {
					return err
				}
			}
			if a.asJSON {
				return a.printJSON(cmd.OutOrStdout(), estimate)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bandwidth=%v points=%d\n", estimate.BandWidth, len(estimate.Points))
			return nil
		},
	}
	cmd.Flags().Float64Var(&adjust, "adjust", kde.DefaultBandWidthAdjust, "bandwidth multiplier")
	cmd.Flags().StringVar(&chartFile, "chart", "", "write the density line chart to this file")
	return cmd
}

// parseRange reads "min:max" with either side optional, min inclusive and
// max exclusive.
func parseRange(column, text string) (risk.Range, error) {
	lo, hi, ok := strings.Cut(text, ":")
	if !ok {
		return risk.Range{}, fmt.Errorf("range %q, want min:max: %w", text, common.ErrorInvalidValue)
	}
	res := risk.Range{Column: column, Min: math.NaN(), Max: math.NaN()}
	var err error
	if lo != "" {
		if res.Min, err = strconv.ParseFloat(lo, 64); err != nil {
			return risk.Range{}, fmt.Errorf("range %q: %w", text, common.ErrorInvalidValue)
		}
	}
	if hi != "" {
		if res.Max, err = strconv.ParseFloat(hi, 64); err != nil {
			return risk.Range{}, fmt.Errorf("range %q: %w", text, common.ErrorInvalidValue)
		}
	}
	return res, nil
}

func newRiskCmd(a *app) *cobra.Command {
	var group, positiveGroup, outcome, positiveOutcome string
	var exposedRange, unexposedRange, chartFile string

	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Relative risk of an outcome between two cohorts",
		Long: `Relative risk of an outcome between two cohorts.

With --positive-group the grouping column must be binary, the other label is
the reference cohort. With --exposed and --unexposed the grouping column is
numeric and each cohort is a min:max range, e.g. --exposed 65: --unexposed 12:65.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			frame, err := a.load(ctx)
			if err != nil {
				return err
			}
			coding := model.Coding{Column: outcome, Positive: positiveOutcome}

			var res *model.RelativeRisk
			var labels []string
			switch {
			case exposedRange != "" && unexposedRange != "":
				exposed, err := parseRange(group, exposedRange)
				if err != nil {
					return err
				}
				unexposed, err := parseRange(group, unexposedRange)
				if err != nil {
					return err
				}
				if res, err = risk.Analyze(ctx, frame, exposed, unexposed, coding); err != nil {
					return err
				}
				labels = []string{exposed.String(), unexposed.String()}
			case positiveGroup != "":
				if res, err = risk.AnalyzeBinary(ctx, frame, group, outcome, positiveGroup, positiveOutcome); err != nil {
					return err
				}
				labels = []string{group + " == " + positiveGroup, "reference"}
			default:
				return fmt.Errorf("need --positive-group or both --exposed and --unexposed: %w", common.ErrorInvalidValue)
			}

			if chartFile != "" {
				opts := a.chartOptions(fmt.Sprintf("Risk of %s == %s", outcome, positiveOutcome), "cohort", "risk")
				p, err := chart.Bar(labels, []float64{res.ExposedRisk, res.UnexposedRisk}, opts)
				if err != nil {
					return err
				}
				if err := chart.Save(p, opts, a.outputPath(chartFile)); err != nil {
					return err
				}
			}

			if a.asJSON {
				return a.printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exposed=%d/%d risk=%v unexposed=%d/%d risk=%v relative_risk=%v\n",
				res.Table.ExposedPresent, res.Table.Exposed(), utils.FormatFloat(res.ExposedRisk, 4),
				res.Table.UnexposedPresent, res.Table.Unexposed(), utils.FormatFloat(res.UnexposedRisk, 4),
				utils.FormatFloat(res.Ratio, 4))
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "grouping column")
	cmd.Flags().StringVar(&positiveGroup, "positive-group", "", "label of the exposed group")
	cmd.Flags().StringVar(&exposedRange, "exposed", "", "exposed cohort as min:max of the grouping column")
	cmd.Flags().StringVar(&unexposedRange, "unexposed", "", "reference cohort as min:max of the grouping column")
	cmd.Flags().StringVar(&outcome, "outcome", "", "binary outcome column")
	cmd.Flags().StringVar(&positiveOutcome, "positive-outcome", "", "label of the outcome that occurred")
	cmd.Flags().StringVar(&chartFile, "chart", "", "write a bar chart of both risks to this file")
	_ = cmd.MarkFlagRequired("group")
	_ = cmd.MarkFlagRequired("outcome")
	_ = cmd.MarkFlagRequired("positive-outcome")
	return cmd
}

func newAnovaCmd(a *app) *cobra.Command {
	var group, outcome, chartFile string
	var alpha float64

	cmd := &cobra.Command{
		Use:   "anova",
		Short: "One-way ANOVA of a numeric outcome across the groups of a column",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			frame, err := a.load(ctx)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("alpha") {
				alpha = a.cfg.Alpha
			}

			res, err := anova.Test(ctx, frame, group, outcome, alpha)
			if err != nil {
				return err
			}

			if chartFile != "" {
				partition, err := table.Partition(frame, group, outcome)
				if err != nil {
					return err
				}
				opts := a.chartOptions(fmt.Sprintf("%s by %s", outcome, group), group, outcome)
				p, err := chart.Box(partition.Keys, partition.Ordered(), opts)
				if err != nil {
					return err
				}
				if err := chart.Save(p, opts, a.outputPath(chartFile)); err != nil {
					return err
				}
			}

			if a.asJSON {
				return a.printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "groups=%d n=%d F=%v p=%v significant=%v (alpha=%v)\n",
				res.Groups, res.Observations, utils.FormatFloat(res.F, 4), res.P, res.Significant, res.Alpha)
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "grouping column")
	cmd.Flags().StringVar(&outcome, "outcome", "", "numeric outcome column")
	cmd.Flags().Float64Var(&alpha, "alpha", anova.DefaultAlpha, "significance level (default COHORT_ALPHA)")
	cmd.Flags().StringVar(&chartFile, "chart", "", "write a box plot per group to this file")
	_ = cmd.MarkFlagRequired("group")
	_ = cmd.MarkFlagRequired("outcome")
	return cmd
}

func newHistCmd(a *app) *cobra.Command {
	var bins int
	var chartFile string

	cmd := &cobra.Command{
		Use:   "hist <column>",
		Short: "Histogram of a numeric column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			column := args[0]
			values, err := frame.Floats(column)
			if err != nil {
				return err
			}

			opts := a.chartOptions("Histogram of "+column, column, "count")
			p, err := chart.Histogram(values, bins, opts)
			if err != nil {
				return common.ColumnError(err, column)
			}
			path := a.outputPath(chartFile)
			if err := chart.Save(p, opts, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().IntVar(&bins, "bins", chart.DefaultBins, "number of bins")
	cmd.Flags().StringVar(&chartFile, "chart", "", "image file to write")
	_ = cmd.MarkFlagRequired("chart")
	return cmd
}

// scatterPoints pairs columns x and y, one set per label of by when by is set.
func scatterPoints(t table.Table, x, y, by string) ([]chart.Points, error) {
	xs, err := t.Floats(x)
	if err != nil {
		return nil, err
	}
	ys, err := t.Floats(y)
	if err != nil {
		return nil, err
	}
	if by == "" {
		return []chart.Points{{X: xs, Y: ys}}, nil
	}

	labels, err := t.Strings(by)
	if err != nil {
		return nil, err
	}
	index := map[string]int{}
	var res []chart.Points
	for i, label := range labels {
		if label == "" {
			continue
		}
		j, ok := index[label]
		if !ok {
			j = len(res)
			index[label] = j
			res = append(res, chart.Points{Label: label})
		}
		res[j].X = append(res[j].X, xs[i])
		res[j].Y = append(res[j].Y, ys[i])
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Label < res[j].Label })
	return res, nil
}

func newScatterCmd(a *app) *cobra.Command {
	var by, chartFile string

	cmd := &cobra.Command{
		Use:   "scatter <x> <y>",
		Short: "Scatter plot of two numeric columns, one colour per label of --by",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			sets, err := scatterPoints(frame, args[0], args[1], by)
			if err != nil {
				return err
			}

			title := fmt.Sprintf("%s vs %s", args[1], args[0])
			if by != "" {
				title += " by " + by
			}
			opts := a.chartOptions(title, args[0], args[1])
			p, err := chart.Scatter(sets, opts)
			if err != nil {
				return err
			}
			path := a.outputPath(chartFile)
			if err := chart.Save(p, opts, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d series)\n", path, len(sets))
			return nil
		},
	}
	cmd.Flags().StringVar(&by, "by", "", "column whose labels colour the points")
	cmd.Flags().StringVar(&chartFile, "chart", "", "image file to write")
	_ = cmd.MarkFlagRequired("chart")
	return cmd
}
