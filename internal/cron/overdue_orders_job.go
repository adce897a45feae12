package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/floorline/backoffice/pkg/logger"
)

const (
	overdueGraceDays = 1
	overdueBatchSize = 100
)

// overdueFlagger is satisfied by orders.Service.
type overdueFlagger interface {
	FlagOverdue(ctx context.Context, asOf time.Time, limit int) (int, error)
}

type OverdueOrdersJobParams struct {
	Logger *logger.Logger
	Orders overdueFlagger
	// GraceDays is how long past its ETA an order may stay unreceived before it is flagged.
	GraceDays int
	BatchSize int
}

// NewOverdueOrdersJob builds the sweep that raises one overdue event per late
// material order so purchasing can chase the supplier.
func NewOverdueOrdersJob(params OverdueOrdersJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	grace := params.GraceDays
	if grace < 0 {
		grace = overdueGraceDays
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = overdueBatchSize
	}
	return &overdueOrdersJob{
		logg:   params.Logger,
		orders: params.Orders,
		grace:  grace,
		batch:  batch,
		now:    time.Now,
	}, nil
}

type overdueOrdersJob struct {
	logg   *logger.Logger
	orders overdueFlagger
	grace  int
	batch  int
	now    func() time.Time
}

func (j *overdueOrdersJob) Name() string { return "overdue-orders" }

func (j *overdueOrdersJob) Run(ctx context.Context) error {
	asOf := j.now().UTC().AddDate(0, 0, -j.grace)
	total := 0
	for {
		flagged, err := j.orders.FlagOverdue(ctx, asOf, j.batch)
		total += flagged
		if err != nil {
			return fmt.Errorf("flag overdue orders: %w", err)
		}
		if flagged < j.batch {
			break
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"as_of":      asOf,
		"grace_days": j.grace,
		"flagged":    total,
	})
	j.logg.Info(logCtx, "overdue order sweep complete")
	return nil
}
