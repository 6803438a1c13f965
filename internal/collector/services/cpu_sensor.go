package services

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
)

// CPUResult is one processor reading: aggregate and per-core utilization
// since the previous call, plus static identity.
type CPUResult struct {
	TotalUsage float64
	PerCore    []float64
	Model      string
	Cores      int
}

// CPUSensor reads processor utilization. Usage percentages are measured
// against the previous invocation, so the first reading of a process is 0.
type CPUSensor struct{}

func NewCPUSensor() *CPUSensor {
	return &CPUSensor{}
}

func (s *CPUSensor) Name() string {
	return "CPU"
}

func (s *CPUSensor) Collect(ctx context.Context) (any, error) {
	total, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil || len(total) == 0 {
		return nil, fmt.Errorf("total cpu percent: %w", err)
	}

	perCore, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		return nil, fmt.Errorf("per-core cpu percent: %w", err)
	}

	res := CPUResult{
		TotalUsage: total[0],
		PerCore:    perCore,
		Model:      "Unknown",
	}
	if info, err := cpu.InfoWithContext(ctx); err == nil && len(info) > 0 {
		res.Model = info[0].ModelName
	}
	if res.Cores, _ = cpu.CountsWithContext(ctx, true); res.Cores == 0 {
		res.Cores = len(perCore)
	}
	return res, nil
}
