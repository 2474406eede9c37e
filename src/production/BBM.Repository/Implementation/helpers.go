package implementation

import (
	"sync"
	"time"

	interfaces "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Repository/Interfaces"
)

var (
	_ interfaces.SensorRepository    = (*MemorySensorRepository)(nil)
	_ interfaces.AlertRepository     = (*MemoryAlertRepository)(nil)
	_ interfaces.ThresholdRepository = (*MemoryThresholdRepository)(nil)
	_ interfaces.DetectionRepository = (*MemoryDetectionRepository)(nil)
	_ interfaces.ActivityRepository  = (*MemoryActivityRepository)(nil)
	_ interfaces.SleepRepository     = (*MemorySleepRepository)(nil)
)

// idGenerator hands out millisecond-derived IDs that never repeat, even when
// several are requested within the same millisecond.
type idGenerator struct {
	mu   sync.Mutex
	last int64
}

func (g *idGenerator) next(now time.Time) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := now.UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}
