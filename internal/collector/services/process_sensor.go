package services

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/process"
)

type ProcessResult struct {
	Running  int
	Blocked  int
	Sleeping int
	Total    int
	Names    []string
}

type ProcessSensor struct{}

func NewProcessSensor() *ProcessSensor {
	return &ProcessSensor{}
}

func (s *ProcessSensor) Name() string {
	return "Process"
}

func (s *ProcessSensor) Collect(ctx context.Context) (any, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pids: %w", err)
	}

	res := ProcessResult{Total: len(pids)}
	limit := 500 // safety limit to avoid long runs on busy hosts
	count := 0

	for _, pid := range pids {
		if count >= limit {
			break
		}
		p, err := process.NewProcessWithContext(ctx, pid)
		if err != nil {
			continue
		}
		count++

		if name, err := p.NameWithContext(ctx); err == nil && name != "" {
			res.Names = append(res.Names, name)
		}

		statuses, err := p.StatusWithContext(ctx)
		if err != nil || len(statuses) == 0 {
			continue
		}
		switch statuses[0] {
		case process.Running:
			res.Running++
		case process.Blocked:
			res.Blocked++
		case process.Sleep, process.Idle:
			res.Sleeping++
		}
	}

	return res, nil
}
