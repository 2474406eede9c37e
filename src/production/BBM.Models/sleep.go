package bbmmodels

import (
	"fmt"
	"time"
)

// Sleep record date and clock layouts
const (
	SleepDateLayout  = "2006-01-02"
	SleepClockLayout = "15:04"
)

type SleepQuality string

const (
	SleepQualityGood SleepQuality = "good"
	SleepQualityFair SleepQuality = "fair"
	SleepQualityPoor SleepQuality = "poor"
)

// Valid reports whether q is one of the known sleep qualities
func (q SleepQuality) Valid() bool {
	switch q {
	case SleepQualityGood, SleepQualityFair, SleepQualityPoor:
		return true
	}
	return false
}

// QualityForHours grades a night the way the sample data does
func QualityForHours(hours float64) SleepQuality {
	switch {
	case hours > 11:
		return SleepQualityGood
	case hours > 9:
		return SleepQualityFair
	default:
		return SleepQualityPoor
	}
}

type SleepTrend string

const (
	SleepTrendImproving SleepTrend = "improving"
	SleepTrendStable    SleepTrend = "stable"
	SleepTrendDeclining SleepTrend = "declining"
)

// SleepRecord is one night in the sleep log. Date is a calendar day and
// BedTime/WakeTime are wall-clock HH:MM values.
type SleepRecord struct {
	ID            string       `json:"id"`
	BabyID        int          `json:"babyId"`
	Date          string       `json:"date"`
	BedTime       string       `json:"bedTime"`
	WakeTime      string       `json:"wakeTime"`
	SleepHours    float64      `json:"sleepHours"`
	SleepQuality  SleepQuality `json:"sleepQuality"`
	AutoSoothings int          `json:"autoSoothings"`
	NightWakings  int          `json:"nightWakings"`
	Temperature   *float64     `json:"temperature"`
	Humidity      *float64     `json:"humidity"`
	NoiseLevel    *float64     `json:"noiseLevel"`
	Notes         string       `json:"notes"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// Validate checks the fields a record cannot be stored without
func (r *SleepRecord) Validate() error {
	if _, err := time.Parse(SleepDateLayout, r.Date); err != nil {
		return NewValidationError("date", "must be a YYYY-MM-DD date")
	}
	if _, err := time.Parse(SleepClockLayout, r.BedTime); err != nil {
		return NewValidationError("bedTime", "must be an HH:MM time")
	}
	if _, err := time.Parse(SleepClockLayout, r.WakeTime); err != nil {
		return NewValidationError("wakeTime", "must be an HH:MM time")
	}
	if r.SleepHours <= 0 || r.SleepHours > 24 {
		return NewValidationError("sleepHours", "must be greater than 0 and at most 24")
	}
	if !r.SleepQuality.Valid() {
		return NewValidationError("sleepQuality", "must be one of good, fair, poor")
	}
	if r.AutoSoothings < 0 {
		return NewValidationError("autoSoothings", "must not be negative")
	}
	if r.NightWakings < 0 {
		return NewValidationError("nightWakings", "must not be negative")
	}
	if r.BabyID <= 0 {
		return NewValidationError("babyId", fmt.Sprintf("must be positive, got %d", r.BabyID))
	}
	return nil
}

// SleepRecordPatch carries the fields a PUT may change. Nil means keep.
type SleepRecordPatch struct {
	Date          *string       `json:"date"`
	BedTime       *string       `json:"bedTime"`
	WakeTime      *string       `json:"wakeTime"`
	SleepHours    *float64      `json:"sleepHours"`
	SleepQuality  *SleepQuality `json:"sleepQuality"`
	AutoSoothings *int          `json:"autoSoothings"`
	NightWakings  *int          `json:"nightWakings"`
	Temperature   *float64      `json:"temperature"`
	Humidity      *float64      `json:"humidity"`
	NoiseLevel    *float64      `json:"noiseLevel"`
	Notes         *string       `json:"notes"`
}

// Apply copies the set fields onto r
func (p SleepRecordPatch) Apply(r *SleepRecord) {
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.BedTime != nil {
		r.BedTime = *p.BedTime
	}
	if p.WakeTime != nil {
		r.WakeTime = *p.WakeTime
	}
	if p.SleepHours != nil {
		r.SleepHours = *p.SleepHours
	}
	if p.SleepQuality != nil {
		r.SleepQuality = *p.SleepQuality
	}
	if p.AutoSoothings != nil {
		r.AutoSoothings = *p.AutoSoothings
	}
	if p.NightWakings != nil {
		r.NightWakings = *p.NightWakings
	}
	if p.Temperature != nil {
		r.Temperature = p.Temperature
	}
	if p.Humidity != nil {
		r.Humidity = p.Humidity
	}
	if p.NoiseLevel != nil {
		r.NoiseLevel = p.NoiseLevel
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
}

// SleepQualityDistribution counts nights per quality grade
type SleepQualityDistribution struct {
	Good int `json:"good"`
	Fair int `json:"fair"`
	Poor int `json:"poor"`
}

// SleepStatistics summarises the sleep log over a window of days.
// Averages are rounded to one decimal; the clock averages are nil when the
// window is empty.
type SleepStatistics struct {
	TotalRecords             int                      `json:"totalRecords"`
	AverageSleepHours        float64                  `json:"averageSleepHours"`
	AverageBedTime           *string                  `json:"averageBedTime"`
	AverageWakeTime          *string                  `json:"averageWakeTime"`
	SleepQualityDistribution SleepQualityDistribution `json:"sleepQualityDistribution"`
	TotalAutoSoothings       int                      `json:"totalAutoSoothings"`
	AverageNightWakings      float64                  `json:"averageNightWakings"`
	SleepTrend               SleepTrend               `json:"sleepTrend"`
	Period                   int                      `json:"period"`
}
