package kde

import (
	"context"
	"fmt"

	"github.com/uyouii/cohort-analytics/common"
	"github.com/uyouii/cohort-analytics/model"
	"github.com/uyouii/cohort-analytics/table"
	"github.com/uyouii/cohort-analytics/utils"
	"go.uber.org/zap"
)

// ColumnDensity estimates the density of a numeric column, missing values
// are skipped.
func ColumnDensity(ctx context.Context, t table.Table, column string,
	bwAdjust float64) (res *model.DensityEstimate, err error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("ColumnDensity recover panic error!", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()), zap.String("column", column))
			res, err = nil, fmt.Errorf("density %s: panic: %v", column, r)
		}
	}()

	kind, err := t.Kind(column)
	if err != nil {
		return nil, err
	}
	if kind != model.Numeric {
		return nil, common.ColumnError(common.ErrorColumnType, column)
	}
	values, err := t.Floats(column)
	if err != nil {
		return nil, err
	}

	k, err := NewUnivariate(values, nil, bwAdjust, DefaultCut)
	if err != nil {
		logger.Error("NewUnivariate failed", zap.Error(err), zap.String("column", column))
		return nil, common.ColumnError(err, column)
	}
	points, bw, err := k.Kdensity()
	if err != nil {
		logger.Error("Kdensity failed", zap.Error(err), zap.String("column", column))
		return nil, common.ColumnError(err, column)
	}

	logger.Info("estimated density", zap.String("column", column),
		zap.Int("points", len(k.Endog)), zap.Float64("bandwidth", bw))
	return &model.DensityEstimate{
		Column:    column,
		BandWidth: bw,
		Points:    points,
	}, nil
}
