package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/net"
)

type InterfaceStats struct {
	Name      string
	BytesRecv uint64
	BytesSent uint64
}

type NetResult struct {
	Interfaces []InterfaceStats
}

type NetSensor struct{}

func NewNetSensor() *NetSensor {
	return &NetSensor{}
}

func (s *NetSensor) Name() string {
	return "Network"
}

func (s *NetSensor) Collect(ctx context.Context) (any, error) {
	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get net io counters: %w", err)
	}

	var stats []InterfaceStats
	for _, c := range counters {
		if isVirtualInterface(c.Name) {
			continue
		}
		stats = append(stats, InterfaceStats{
			Name:      c.Name,
			BytesRecv: c.BytesRecv,
			BytesSent: c.BytesSent,
		})
	}

	return NetResult{Interfaces: stats}, nil
}

// isVirtualInterface filters loopback and container bridges whose traffic
// would dominate the real NICs in rate calculations.
func isVirtualInterface(name string) bool {
	for _, prefix := range []string{"lo", "docker", "veth", "br-", "virbr"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
