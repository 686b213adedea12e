package risk

import (
	"context"
	"fmt"

	"github.com/uyouii/cohort-analytics/model"
	"github.com/uyouii/cohort-analytics/table"
	"github.com/uyouii/cohort-analytics/utils"
	"go.uber.org/zap"
)

// Analyze compares two cohorts and logs the contingency table.
func Analyze(ctx context.Context, t table.Table, exposed, unexposed Cohort,
	outcome model.Coding) (res *model.RelativeRisk, err error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Analyze recover panic error!", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()))
			res, err = nil, fmt.Errorf("relative risk: panic: %v", r)
		}
	}()

	res, err = Compare(t, exposed, unexposed, outcome)
	if err != nil {
		logger.Error("relative risk failed", zap.Error(err),
			zap.Stringer("exposed", exposed), zap.Stringer("unexposed", unexposed))
		return nil, err
	}

	logger.Info("relative risk", zap.Stringer("exposed", exposed), zap.Stringer("unexposed", unexposed),
		zap.String("outcome", outcome.Column), zap.Any("table", res.Table),
		zap.Float64("exposed_risk", res.ExposedRisk), zap.Float64("unexposed_risk", res.UnexposedRisk),
		zap.Float64("ratio", res.Ratio))
	return res, nil
}

// AnalyzeBinary is Analyze for a two-valued grouping column.
func AnalyzeBinary(ctx context.Context, t table.Table, groupCol, outcomeCol,
	positiveGroup, positiveOutcome string) (*model.RelativeRisk, error) {
	exposed, unexposed, err := Binary(t, groupCol, positiveGroup)
	if err != nil {
		utils.GetLogger(ctx).Error("grouping column is not binary", zap.Error(err))
		return nil, err
	}
	return Analyze(ctx, t, exposed, unexposed, model.Coding{Column: outcomeCol, Positive: positiveOutcome})
}
