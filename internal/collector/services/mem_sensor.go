package services

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"
)

type MemResult struct {
	Total     uint64
	Used      uint64
	Free      uint64
	Available uint64
	SwapTotal uint64
	SwapUsed  uint64
}

type MemSensor struct{}

func NewMemSensor() *MemSensor {
	return &MemSensor{}
}

func (s *MemSensor) Name() string {
	return "Memory"
}

func (s *MemSensor) Collect(ctx context.Context) (any, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get virtual memory: %w", err)
	}

	// Swap is best-effort: a host without swap is not an error.
	swapTotal := v.SwapTotal
	swapUsed := v.SwapTotal - v.SwapFree
	if swapStat, swapErr := mem.SwapMemoryWithContext(ctx); swapErr == nil && swapStat != nil {
		swapTotal = swapStat.Total
		swapUsed = swapStat.Used
	}

	return MemResult{
		Total:     v.Total,
		Used:      v.Used,
		Free:      v.Free,
		Available: v.Available,
		SwapTotal: swapTotal,
		SwapUsed:  swapUsed,
	}, nil
}
