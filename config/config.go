package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/uyouii/cohort-analytics/anova"
	"github.com/uyouii/cohort-analytics/chart"
	"github.com/uyouii/cohort-analytics/common"
	"github.com/uyouii/cohort-analytics/iqr"
)

// Config holds the analysis defaults, read from the environment.
type Config struct {
	LogLevel  string
	OutputDir string
	// FenceK is the IQR multiplier used when trimming outliers.
	FenceK float64
	// Alpha is the significance level of the group ANOVA.
	Alpha       float64
	ChartWidth  float64
	ChartHeight float64
}

func Default() *Config {
	return &Config{
		LogLevel:    "info",
		OutputDir:   ".",
		FenceK:      iqr.DefaultFenceMultiplier,
		Alpha:       anova.DefaultAlpha,
		ChartWidth:  chart.DefaultWidthInch,
		ChartHeight: chart.DefaultHeightInch,
	}
}

// Load reads envFiles (".env" when none is given, a missing file is not an
// error) and then the COHORT_* environment variables.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg := Default()
	cfg.LogLevel = getEnvOrDefault("COHORT_LOG_LEVEL", cfg.LogLevel)
	cfg.OutputDir = getEnvOrDefault("COHORT_OUTPUT_DIR", cfg.OutputDir)

	var err error
	if cfg.FenceK, err = getEnvFloatOrDefault("COHORT_FENCE_K", cfg.FenceK); err != nil {
		return nil, err
	}
	if cfg.Alpha, err = getEnvFloatOrDefault("COHORT_ALPHA", cfg.Alpha); err != nil {
		return nil, err
	}
	if cfg.ChartWidth, err = getEnvFloatOrDefault("COHORT_CHART_WIDTH_IN", cfg.ChartWidth); err != nil {
		return nil, err
	}
	if cfg.ChartHeight, err = getEnvFloatOrDefault("COHORT_CHART_HEIGHT_IN", cfg.ChartHeight); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if !(c.FenceK > 0) || math.IsInf(c.FenceK, 0) {
		return fmt.Errorf("COHORT_FENCE_K must be positive, got %v: %w", c.FenceK, common.ErrorInvalidValue)
	}
	if !(c.Alpha > 0 && c.Alpha < 1) {
		return fmt.Errorf("COHORT_ALPHA must be in (0, 1), got %v: %w", c.Alpha, common.ErrorInvalidValue)
	}
	if !(c.ChartWidth > 0) || !(c.ChartHeight > 0) || math.IsInf(c.ChartWidth, 0) || math.IsInf(c.ChartHeight, 0) {
		return fmt.Errorf("chart size must be positive: %w", common.ErrorInvalidValue)
	}
	return nil
}

func (c *Config) ChartOptions() chart.Options {
	return chart.Options{Width: c.ChartWidth, Height: c.ChartHeight}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", key, value, common.ErrorInvalidValue)
	}
	return f, nil
}
