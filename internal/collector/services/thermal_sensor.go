package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/sensors"
)

type ThermalResult struct {
	CPUTemperature float64
	Known          bool
}

type ThermalSensor struct{}

func NewThermalSensor() *ThermalSensor {
	return &ThermalSensor{}
}

func (s *ThermalSensor) Name() string {
	return "Thermal"
}

// Collect reads thermal sensors and picks the hottest CPU-looking one.
// Hosts without readable sensors report Known=false rather than an error.
func (s *ThermalSensor) Collect(ctx context.Context) (any, error) {
	data, err := sensors.TemperaturesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get temperatures: %w", err)
	}

	res := ThermalResult{}
	for _, t := range data {
		if t.Temperature <= 0 {
			continue
		}
		if !isCPUSensor(t.SensorKey) {
			continue
		}
		if !res.Known || t.Temperature > res.CPUTemperature {
			res.CPUTemperature = t.Temperature
			res.Known = true
		}
	}
	return res, nil
}

func isCPUSensor(key string) bool {
	key = strings.ToLower(key)
	for _, marker := range []string{"coretemp", "cpu", "k10temp", "package", "tdie", "tctl", "soc"} {
		if strings.Contains(key, marker) {
			return true
		}
	}
	return false
}
