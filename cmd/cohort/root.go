package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"github.com/uyouii/cohort-analytics/common"
	"github.com/uyouii/cohort-analytics/config"
	"github.com/uyouii/cohort-analytics/table"
	"github.com/uyouii/cohort-analytics/utils"
	"go.uber.org/zap"
)

type app struct {
	cfg *config.Config

	envFile   string
	logLevel  string
	file      string
	sheet     string
	delimiter string
	drop      []string
	rename    []string
	normalize bool
	where     []string
	dropNA    []string
	asJSON    bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "cohort",
		Short: "Descriptive statistics, outlier trimming, relative risk and ANOVA over tabular data",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var envFiles []string
			if a.envFile != "" {
				envFiles = append(envFiles, a.envFile)
			}
			cfg, err := config.Load(envFiles...)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.LogLevel = a.logLevel
			}
			if err := utils.InitLogger(cfg.LogLevel); err != nil {
				return fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
			}
			a.cfg = cfg
			return nil
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env", "", "env file with COHORT_* settings (default .env)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level, overrides COHORT_LOG_LEVEL")
	flags.StringVarP(&a.file, "file", "f", "", "input .csv, .tsv or .xlsx file")
	flags.StringVar(&a.sheet, "sheet", "", "workbook sheet (default first sheet)")
	flags.StringVar(&a.delimiter, "delimiter", "", "field delimiter of delimited text (default ,)")
	flags.StringSliceVar(&a.drop, "drop", nil, "columns to drop after loading, e.g. unique identifiers")
	flags.StringSliceVar(&a.rename, "rename", nil, "columns to rename, old=new")
	flags.BoolVar(&a.normalize, "normalize-names", false, "trim and lower-case column names, '-' and ' ' become '_'")
	flags.StringSliceVar(&a.where, "where", nil, "keep rows where column=value, all must hold")
	flags.StringSliceVar(&a.dropNA, "drop-na", nil, "drop rows missing a value in these columns")
	flags.BoolVar(&a.asJSON, "json", false, "print results as JSON")
	_ = rootCmd.MarkPersistentFlagRequired("file")

	rootCmd.AddCommand(
		newDescribeCmd(a),
		newCountsCmd(a),
		newTrimCmd(a),
		newRiskCmd(a),
		newAnovaCmd(a),
		newDensityCmd(a),
		newHistCmd(a),
		newScatterCmd(a),
	)
	return rootCmd
}

// load reads the input file and applies the cleaning flags in order: drop,
// rename, normalize names, where, drop missing.
func (a *app) load(ctx context.Context) (*table.Frame, error) {
	logger := utils.GetLogger(ctx)

	opts := table.LoadOptions{Sheet: a.sheet}
	if a.delimiter != "" {
		r, size := utf8.DecodeRuneInString(a.delimiter)
		if size != len(a.delimiter) {
			return nil, fmt.Errorf("delimiter %q must be one character: %w", a.delimiter, common.ErrorInvalidValue)
		}
		opts.Delimiter = r
	}

	frame, err := table.LoadFile(a.file, opts)
	if err != nil {
		return nil, err
	}
	if len(a.drop) > 0 {
		if frame, err = frame.Drop(a.drop...); err != nil {
			return nil, err
		}
	}
	if len(a.rename) > 0 {
		names := map[string]string{}
		for _, pair := range a.rename {
			old, name, ok := strings.Cut(pair, "=")
			if !ok || old == "" || name == "" {
				return nil, fmt.Errorf("rename %q, want old=new: %w", pair, common.ErrorInvalidValue)
			}
			names[old] = name
		}
		if frame, err = frame.Rename(names); err != nil {
			return nil, err
		}
	}
	if a.normalize {
		if frame, err = frame.NormalizeNames(); err != nil {
			return nil, err
		}
	}
	for _, cond := range a.where {
		column, value, ok := strings.Cut(cond, "=")
		if !ok || column == "" {
			return nil, fmt.Errorf("where %q, want column=value: %w", cond, common.ErrorInvalidValue)
		}
		if frame, err = frame.Filter(column, value); err != nil {
			return nil, err
		}
	}
	if len(a.dropNA) > 0 {
		if frame, err = frame.DropMissing(a.dropNA...); err != nil {
			return nil, err
		}
	}

	logger.Info("loaded table", zap.String("file", a.file), zap.Int("rows", frame.Len()),
		zap.Strings("columns", frame.Names()))
	return frame, nil
}

func (a *app) printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
