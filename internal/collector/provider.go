package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sysweather/internal/collector/services"
)

// ============================================================================
// INTERFACE DEFINITION
// ============================================================================

// MetricsProvider defines the contract for any telemetry source.
type MetricsProvider interface {
	// Snapshot returns a point-in-time Sample. Partial data (e.g. an
	// unreadable thermal sensor) is tolerated; only the loss of a core
	// subsystem (CPU, memory) fails the call.
	Snapshot(ctx context.Context) (*Sample, error)
}

// ============================================================================
// CONCRETE IMPLEMENTATION
// ============================================================================

// SystemCollector gathers a Sample from the local host using one sensor per
// subsystem, all queried concurrently.
type SystemCollector struct {
	cfg Config

	cpuSensor     services.Sensor
	memSensor     services.Sensor
	diskSensor    services.Sensor
	netSensor     services.Sensor
	processSensor services.Sensor
	thermalSensor services.Sensor

	now func() time.Time
}

func NewSystemCollector(cfg Config) *SystemCollector {
	return &SystemCollector{
		cfg:           cfg,
		cpuSensor:     services.NewCPUSensor(),
		memSensor:     services.NewMemSensor(),
		diskSensor:    services.NewDiskSensor(),
		netSensor:     services.NewNetSensor(),
		processSensor: services.NewProcessSensor(),
		thermalSensor: services.NewThermalSensor(),
		now:           time.Now,
	}
}

// Internal result types for concurrency
type cpuResult struct {
	stats services.CPUResult
	err   error
}

type memResult struct {
	stats services.MemResult
	err   error
}

type diskResult struct {
	stats services.DiskResult
	err   error
}

type netResult struct {
	stats services.NetResult
	err   error
}

type processResult struct {
	stats services.ProcessResult
	err   error
}

type thermalResult struct {
	stats services.ThermalResult
	err   error
}

// Snapshot collects all subsystems concurrently and merges them into one
// timestamped Sample.
func (s *SystemCollector) Snapshot(ctx context.Context) (*Sample, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SnapshotTimeout)
	defer cancel()

	cpuCh := make(chan cpuResult, 1)
	memCh := make(chan memResult, 1)
	diskCh := make(chan diskResult, 1)
	netCh := make(chan netResult, 1)
	processCh := make(chan processResult, 1)
	thermalCh := make(chan thermalResult, 1)

	var wg sync.WaitGroup
	wg.Add(6)

	go func() {
		defer wg.Done()
		res, err := s.cpuSensor.Collect(ctx)
		if err != nil {
			cpuCh <- cpuResult{err: err}
			return
		}
		cpuCh <- cpuResult{stats: res.(services.CPUResult)}
	}()

	go func() {
		defer wg.Done()
		res, err := s.memSensor.Collect(ctx)
		if err != nil {
			memCh <- memResult{err: err}
			return
		}
		memCh <- memResult{stats: res.(services.MemResult)}
	}()

	go func() {
		defer wg.Done()
		res, err := s.diskSensor.Collect(ctx)
		if err != nil {
			diskCh <- diskResult{err: err}
			return
		}
		diskCh <- diskResult{stats: res.(services.DiskResult)}
	}()

	go func() {
		defer wg.Done()
		res, err := s.netSensor.Collect(ctx)
		if err != nil {
			netCh <- netResult{err: err}
			return
		}
		netCh <- netResult{stats: res.(services.NetResult)}
	}()

	go func() {
		defer wg.Done()
		res, err := s.processSensor.Collect(ctx)
		if err != nil {
			processCh <- processResult{err: err}
			return
		}
		processCh <- processResult{stats: res.(services.ProcessResult)}
	}()

	go func() {
		defer wg.Done()
		if !s.cfg.EnableThermal {
			thermalCh <- thermalResult{}
			return
		}
		res, err := s.thermalSensor.Collect(ctx)
		if err != nil {
			thermalCh <- thermalResult{err: err}
			return
		}
		thermalCh <- thermalResult{stats: res.(services.ThermalResult)}
	}()

	wg.Wait()

	cpuRes := <-cpuCh
	memRes := <-memCh
	diskRes := <-diskCh
	netRes := <-netCh
	processRes := <-processCh
	thermalRes := <-thermalCh

	// CPU and memory are the backbone of classification; everything else
	// degrades gracefully.
	if cpuRes.err != nil {
		return nil, fmt.Errorf("failed to get CPU metrics: %w", cpuRes.err)
	}
	if memRes.err != nil {
		return nil, fmt.Errorf("failed to get memory metrics: %w", memRes.err)
	}

	sample := &Sample{
		Timestamp: s.now(),
		CPU: CPUStats{
			UsagePercent: cpuRes.stats.TotalUsage,
			PerCore:      cpuRes.stats.PerCore,
			CoreCount:    cpuRes.stats.Cores,
			Model:        cpuRes.stats.Model,
		},
		Memory: MemoryStats{
			TotalBytes:     memRes.stats.Total,
			UsedBytes:      memRes.stats.Used,
			FreeBytes:      memRes.stats.Free,
			SwapTotalBytes: memRes.stats.SwapTotal,
			SwapUsedBytes:  memRes.stats.SwapUsed,
		},
	}

	if thermalRes.err == nil && thermalRes.stats.Known {
		sample.CPU.TemperatureC = thermalRes.stats.CPUTemperature
		sample.CPU.TemperatureKnown = true
	}

	if diskRes.err == nil {
		for _, fs := range diskRes.stats.Filesystems {
			sample.Disks = append(sample.Disks, DiskUsage{
				Filesystem:     fs.Device,
				MountPoint:     fs.Mountpoint,
				UsagePercent:   fs.UsedPercent,
				AvailableBytes: fs.Free,
			})
		}
	}

	if netRes.err == nil {
		sample.Network = mergeNetwork(netRes.stats)
	}

	if processRes.err == nil {
		sample.Processes = ProcessStats{
			Running:  processRes.stats.Running,
			Blocked:  processRes.stats.Blocked,
			Sleeping: processRes.stats.Sleeping,
			Total:    processRes.stats.Total,
			Names:    processRes.stats.Names,
		}
	}

	sample.Normalize()
	return sample, nil
}

// mergeNetwork converts sensor output and elects the busiest interface as
// primary.
func mergeNetwork(res services.NetResult) NetworkStats {
	net := NetworkStats{}
	var busiest uint64
	for _, ifc := range res.Interfaces {
		net.Interfaces = append(net.Interfaces, InterfaceCounters{
			Name:    ifc.Name,
			RxBytes: ifc.BytesRecv,
			TxBytes: ifc.BytesSent,
		})
		if total := ifc.BytesRecv + ifc.BytesSent; total >= busiest {
			busiest = total
			net.PrimaryInterface = ifc.Name
		}
	}
	return net
}
