package sleep

import (
	"context"
	"fmt"
	"math"
	"time"

	logger "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Logger"
	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
	interfaces "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Repository/Interfaces"
)

const (
	DefaultBabyID      = 1
	DefaultPeriodDays  = 7
	MaxPeriodDays      = 366
	SampleNights       = 7
	recentTrendNights  = 3
	trendMarginHours   = 0.5
	minutesPerDay      = 24 * 60
	eveningStartMinute = 12 * 60
)

// Service is the sleep log: CRUD over the record store plus the
// statistics window.
type Service struct {
	repo   interfaces.SleepRepository
	logger *logger.Logger
	now    func() time.Time
}

func NewService(repo interfaces.SleepRepository, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: log.WithComponent("sleep"),
		now:    time.Now,
	}
}

func (s *Service) Create(ctx context.Context, record bbmmodels.SleepRecord) (*bbmmodels.SleepRecord, error) {
	out, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Logger.Info().Str("id", out.ID).Str("date", out.Date).Msg("Sleep record added")
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*bbmmodels.SleepRecord, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, params interfaces.SleepQueryParams) ([]bbmmodels.SleepRecord, error) {
	if params.BabyID <= 0 {
		params.BabyID = DefaultBabyID
	}
	if err := checkDate("startDate", params.From); err != nil {
		return nil, err
	}
	if err := checkDate("endDate", params.To); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, params)
}

func checkDate(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(bbmmodels.SleepDateLayout, value); err != nil {
		return bbmmodels.NewValidationError(field, "must be a YYYY-MM-DD date")
	}
	return nil
}

func (s *Service) Update(ctx context.Context, id string, patch bbmmodels.SleepRecordPatch) (*bbmmodels.SleepRecord, error) {
	out, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Logger.Info().Str("id", id).Msg("Sleep record updated")
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Logger.Info().Str("id", id).Msg("Sleep record deleted")
	return nil
}

// Statistics summarises the nights dated within the last period calendar
// days, today included. The trend compares the three newest nights against the
// rest of the window.
func (s *Service) Statistics(ctx context.Context, babyID, period int) (bbmmodels.SleepStatistics, error) {
	if babyID <= 0 {
		babyID = DefaultBabyID
	}
	if period <= 0 {
		period = DefaultPeriodDays
	}
	if period > MaxPeriodDays {
		return bbmmodels.SleepStatistics{}, bbmmodels.NewValidationError("period", fmt.Sprintf("must be at most %d days", MaxPeriodDays))
	}

	today := s.now()
	records, err := s.repo.List(ctx, interfaces.SleepQueryParams{
		BabyID: babyID,
		From:   today.AddDate(0, 0, 1-period).Format(bbmmodels.SleepDateLayout),
		To:     today.Format(bbmmodels.SleepDateLayout),
		Limit:  math.MaxInt32,
	})
	if err != nil {
		return bbmmodels.SleepStatistics{}, err
	}

	stats := bbmmodels.SleepStatistics{TotalRecords: len(records), SleepTrend: bbmmodels.SleepTrendStable, Period: period}
	if len(records) == 0 {
		return stats, nil
	}

	var hours, wakings float64
	bedMinutes := make([]int, 0, len(records))
	wakeMinutes := make([]int, 0, len(records))
	for _, r := range records {
		hours += r.SleepHours
		wakings += float64(r.NightWakings)
		stats.TotalAutoSoothings += r.AutoSoothings
		switch r.SleepQuality {
		case bbmmodels.SleepQualityGood:
			stats.SleepQualityDistribution.Good++
		case bbmmodels.SleepQualityFair:
			stats.SleepQualityDistribution.Fair++
		case bbmmodels.SleepQualityPoor:
			stats.SleepQualityDistribution.Poor++
		}
		if m, ok := clockMinutes(r.BedTime); ok {
			// a bed time after midnight belongs to the same night
			if m < eveningStartMinute {
				m += minutesPerDay
			}
			bedMinutes = append(bedMinutes, m)
		}
		if m, ok := clockMinutes(r.WakeTime); ok {
			wakeMinutes = append(wakeMinutes, m)
		}
	}
	n := float64(len(records))
	stats.AverageSleepHours = round1(hours / n)
	stats.AverageNightWakings = round1(wakings / n)
	stats.AverageBedTime = averageClock(bedMinutes)
	stats.AverageWakeTime = averageClock(wakeMinutes)
	stats.SleepTrend = trend(records)
	return stats, nil
}

// trend expects records newest first
func trend(records []bbmmodels.SleepRecord) bbmmodels.SleepTrend {
	if len(records) <= recentTrendNights {
		return bbmmodels.SleepTrendStable
	}
	recent := meanHours(records[:recentTrendNights])
	older := meanHours(records[recentTrendNights:])
	switch {
	case recent > older+trendMarginHours:
		return bbmmodels.SleepTrendImproving
	case recent < older-trendMarginHours:
		return bbmmodels.SleepTrendDeclining
	default:
		return bbmmodels.SleepTrendStable
	}
}

func meanHours(records []bbmmodels.SleepRecord) float64 {
	var sum float64
	for _, r := range records {
		sum += r.SleepHours
	}
	return sum / float64(len(records))
}

func clockMinutes(clock string) (int, bool) {
	t, err := time.Parse(bbmmodels.SleepClockLayout, clock)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

func averageClock(minutes []int) *string {
	if len(minutes) == 0 {
		return nil
	}
	var sum int
	for _, m := range minutes {
		sum += m
	}
	avg := int(math.Round(float64(sum)/float64(len(minutes)))) % minutesPerDay
	out := fmt.Sprintf("%02d:%02d", avg/60, avg%60)
	return &out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// SeedSamples fills an empty log with a week of demo nights ending today.
// It does nothing when records already exist.
func (s *Service) SeedSamples(ctx context.Context) error {
	if s.repo.Count(ctx) > 0 {
		return nil
	}
	today := s.now()
	for i := SampleNights - 1; i >= 0; i-- {
		hours := math.Max(8, math.Min(14, 10+float64(SampleNights-1-i)*0.5))
		wake := "07:00"
		if i < 3 {
			wake = "06:30"
		}
		temperature := 22 + float64(i%3)
		humidity := 45 + float64(i*2)
		noise := 10 + float64(i*3)
		_, err := s.repo.Create(ctx, bbmmodels.SleepRecord{
			BabyID:        DefaultBabyID,
			Date:          today.AddDate(0, 0, -i).Format(bbmmodels.SleepDateLayout),
			BedTime:       "20:00",
			WakeTime:      wake,
			SleepHours:    hours,
			SleepQuality:  bbmmodels.QualityForHours(hours),
			AutoSoothings: i % 3,
			NightWakings:  (i * 2) % 4,
			Temperature:   &temperature,
			Humidity:      &humidity,
			NoiseLevel:    &noise,
		})
		if err != nil {
			return fmt.Errorf("seed sleep sample: %w", err)
		}
	}
	s.logger.Info("Sample sleep data initialized")
	return nil
}
