package services

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
)

type FilesystemUsage struct {
	Device      string
	Mountpoint  string
	Fstype      string
	Total       uint64
	Free        uint64
	UsedPercent float64
}

type DiskResult struct {
	Filesystems []FilesystemUsage
}

type DiskSensor struct{}

func NewDiskSensor() *DiskSensor {
	return &DiskSensor{}
}

func (s *DiskSensor) Name() string {
	return "Disk"
}

func (s *DiskSensor) Collect(ctx context.Context) (any, error) {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get partitions: %w", err)
	}

	var usages []FilesystemUsage
	seen := make(map[string]bool)
	for _, p := range partitions {
		if p.Device == "" || seen[p.Mountpoint] {
			continue
		}
		seen[p.Mountpoint] = true

		// Usage is per-mountpoint and best-effort; an unreadable mount
		// (stale NFS, fuse) should not fail the whole sample.
		u, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			continue
		}
		usages = append(usages, FilesystemUsage{
			Device:      p.Device,
			Mountpoint:  p.Mountpoint,
			Fstype:      p.Fstype,
			Total:       u.Total,
			Free:        u.Free,
			UsedPercent: u.UsedPercent,
		})
	}

	return DiskResult{Filesystems: usages}, nil
}
