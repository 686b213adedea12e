package iqr

import (
	"context"
	"fmt"

	"github.com/uyouii/cohort-analytics/model"
	"github.com/uyouii/cohort-analytics/table"
	"github.com/uyouii/cohort-analytics/utils"
	"go.uber.org/zap"
)

// TrimColumn trims the outliers of column and logs the fence it used.
func TrimColumn(ctx context.Context, t table.Table, column string,
	k float64) (trimmed table.Table, fence model.Fence, err error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("TrimColumn recover panic error!", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()), zap.String("column", column))
			err = fmt.Errorf("trim %s: panic: %v", column, r)
		}
	}()

	trimmed, fence, err = Trim(t, column, k)
	if err != nil {
		logger.Error("Trim failed", zap.Error(err), zap.String("column", column), zap.Float64("k", k))
		return nil, model.Fence{}, err
	}

	logger.Info("trimmed outliers", zap.String("column", column),
		zap.Float64("q1", fence.Q1), zap.Float64("q3", fence.Q3),
		zap.Float64("lower", fence.Lower), zap.Float64("upper", fence.Upper),
		zap.Int("rows", t.Len()), zap.Int("kept", trimmed.Len()))
	return trimmed, fence, nil
}
