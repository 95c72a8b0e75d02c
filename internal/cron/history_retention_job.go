package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/tableorder/pkg/logger"
)

const HistoryRetentionJobName = "history_retention"

type historyPruner interface {
	PruneExpired(ctx context.Context) (int64, error)
}

// HistoryRetentionJob deletes history rows of sessions idle past their TTL.
// Sessions that never write again would otherwise stay in the table.
type HistoryRetentionJob struct {
	logg   *logger.Logger
	pruner historyPruner
}

func NewHistoryRetentionJob(logg *logger.Logger, pruner historyPruner) (*HistoryRetentionJob, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if pruner == nil {
		return nil, fmt.Errorf("history pruner required")
	}
	return &HistoryRetentionJob{logg: logg, pruner: pruner}, nil
}

func (j *HistoryRetentionJob) Name() string { return HistoryRetentionJobName }

func (j *HistoryRetentionJob) Run(ctx context.Context) error {
	removed, err := j.pruner.PruneExpired(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		j.logg.Info(j.logg.WithField(ctx, "removed", removed), "expired history sessions pruned")
	}
	return nil
}
