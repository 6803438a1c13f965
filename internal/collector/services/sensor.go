package services

import "context"

// Sensor is one host subsystem reader. Sensors are stateless; every Collect
// reads the live kernel counters, so there is no session to open or close.
type Sensor interface {
	Name() string
	Collect(ctx context.Context) (any, error)
}
