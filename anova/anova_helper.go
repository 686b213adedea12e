package anova

import (
	"context"
	"fmt"

	"github.com/uyouii/cohort-analytics/common"
	"github.com/uyouii/cohort-analytics/model"
	"github.com/uyouii/cohort-analytics/table"
	"github.com/uyouii/cohort-analytics/utils"
	"go.uber.org/zap"
)

// Test runs the group ANOVA and flags the result significant when p < alpha.
func Test(ctx context.Context, t table.Table, groupCol, outcomeCol string,
	alpha float64) (res *model.AnovaResult, err error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Test recover panic error!", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()))
			res, err = nil, fmt.Errorf("anova: panic: %v", r)
		}
	}()

	if !(alpha > 0 && alpha < 1) {
		return nil, fmt.Errorf("alpha %v: %w", alpha, common.ErrorInvalidValue)
	}

	res, err = Partitioned(t, groupCol, outcomeCol)
	if err != nil {
		logger.Error("anova failed", zap.Error(err),
			zap.String("group", groupCol), zap.String("outcome", outcomeCol))
		return nil, err
	}
	res.Alpha = alpha
	res.Significant = res.P < alpha

	logger.Info("anova", zap.String("group", groupCol), zap.String("outcome", outcomeCol),
		zap.Int("groups", res.Groups), zap.Int("observations", res.Observations),
		zap.Float64("f", res.F), zap.Float64("p", res.P), zap.Bool("significant", res.Significant))
	return res, nil
}
