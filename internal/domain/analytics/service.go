// Package analytics computes the dashboard headline numbers.
package analytics

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/panacea/panacea/internal/domain/ward"
	"github.com/panacea/panacea/internal/platform/cache"
)

const StatsCacheKey = "analytics:stats"

// placeholderTrend precedes the live patient count in Stats.Trends.
var placeholderTrend = []int{40, 30, 45, 60, 55, 65}

type Stats struct {
	Patients     int   `json:"patients"`
	Doctors      int   `json:"doctors"`
	Appointments int   `json:"appointments"`
	Occupancy    int   `json:"occupancy"`
	Trends       []int `json:"trends"`
}

type PatientCounter interface {
	CountActive(ctx context.Context) (int, error)
}

type DoctorCounter interface {
	CountDoctors(ctx context.Context) (int, error)
}

type AppointmentCounter interface {
	CountPending(ctx context.Context) (int, error)
}

type OccupancySource interface {
	Totals(ctx context.Context) (ward.Occupancy, error)
}

type Service struct {
	patients     PatientCounter
	doctors      DoctorCounter
	appointments AppointmentCounter
	wards        OccupancySource
	cache        cache.Cache
	ttl          time.Duration
	logger       zerolog.Logger
}

// NewService caches results for ttl; a zero ttl or nil cache disables it.
func NewService(patients PatientCounter, doctors DoctorCounter, appointments AppointmentCounter,
	wards OccupancySource, c cache.Cache, ttl time.Duration, logger zerolog.Logger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{
		patients:     patients,
		doctors:      doctors,
		appointments: appointments,
		wards:        wards,
		cache:        c,
		ttl:          ttl,
		logger:       logger.With().Str("component", "analytics").Logger(),
	}
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	if s.ttl > 0 {
		var cached Stats
		err := s.cache.Get(ctx, StatsCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn().Err(err).Msg("stats cache read failed")
		}
	}

	st, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.ttl > 0 {
		if err := s.cache.Set(ctx, StatsCacheKey, st, s.ttl); err != nil {
			s.logger.Warn().Err(err).Msg("stats cache write failed")
		}
	}
	return st, nil
}

// Invalidate drops the cached stats so the next read recomputes them.
func (s *Service) Invalidate(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}
	if err := s.cache.Delete(ctx, StatsCacheKey); err != nil {
		s.logger.Warn().Err(err).Msg("stats cache invalidation failed")
	}
}

func (s *Service) compute(ctx context.Context) (*Stats, error) {
	var (
		st  Stats
		occ ward.Occupancy
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.Patients, err = s.patients.CountActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.Doctors, err = s.doctors.CountDoctors(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.Appointments, err = s.appointments.CountPending(gctx)
		return err
	})
	g.Go(func() (err error) {
		occ, err = s.wards.Totals(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	st.Occupancy = OccupancyRate(occ)
	st.Trends = append(append(make([]int, 0, len(placeholderTrend)+1), placeholderTrend...), st.Patients)
	return &st, nil
}

// OccupancyRate is the rounded percentage of occupied beds, 0 without beds.
func OccupancyRate(o ward.Occupancy) int {
	if o.Capacity <= 0 {
		return 0
	}
	return int(math.Round(float64(o.Occupied) / float64(o.Capacity) * 100))
}
