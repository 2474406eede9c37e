package bbmmodels

import "time"

// SensorSample is one reading of the nursery environment sensors
type SensorSample struct {
	RoomTemperature float64   `json:"roomTemperature"`
	Humidity        float64   `json:"humidity"`
	BabyTemperature float64   `json:"babyTemperature"`
	Timestamp       time.Time `json:"timestamp"`
}

// BaselineSample is served as the current reading before any sensor read happened
func BaselineSample(now time.Time) SensorSample {
	return SensorSample{
		RoomTemperature: 23.2,
		Humidity:        48,
		BabyTemperature: 36.8,
		Timestamp:       now,
	}
}

// Threshold bounds the acceptable baby body temperature, low < high
type Threshold struct {
	Low       float64   `json:"low"`
	High      float64   `json:"high"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	DefaultThresholdLow  = 36.0
	DefaultThresholdHigh = 38.0
)

// DefaultThreshold is returned until a threshold has been configured
func DefaultThreshold(now time.Time) Threshold {
	return Threshold{Low: DefaultThresholdLow, High: DefaultThresholdHigh, UpdatedAt: now}
}
