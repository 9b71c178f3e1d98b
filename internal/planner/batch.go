package planner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"trade-planner/internal/cost"
)

// PlanAll 并发规划多个相互独立的任务，结果顺序与 jobs 一致。任一任务失败即取消其余任务。
func (p *Planner) PlanAll(ctx context.Context, jobs []Job) ([][]cost.Action, error) {
	results := make([][]cost.Action, len(jobs))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			actions, err := p.Plan(job.Request, job.Book, job.Gas)
			if err != nil {
				return fmt.Errorf("planner: 任务 %d 规划失败: %w", i, err)
			}
			results[i] = actions
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
