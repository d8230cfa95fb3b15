package services

import (
	"context"
	"errors"
	"time"

	"cleverheal-api/internal/cache"
	"cleverheal-api/internal/models"
	"cleverheal-api/internal/repository"

	"go.uber.org/zap"
)

const statsKey = "stats:admin"

// Stats are the admin panel counters. TotalUsers counts role grants, so a
// user holding two roles counts twice.
type Stats struct {
	TotalUsers        int64 `json:"totalUsers"`
	TotalPatients     int64 `json:"totalPatients"`
	TotalDoctors      int64 `json:"totalDoctors"`
	TotalAdmins       int64 `json:"totalAdmins"`
	TotalAppointments int64 `json:"totalAppointments"`
	TodayAppointments int64 `json:"todayAppointments"`
}

type StatsService struct {
	store  *repository.Store
	kv     cache.KV
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewStatsService(store *repository.Store, kv cache.KV, ttl time.Duration, logger *zap.Logger) *StatsService {
	if kv == nil {
		kv = cache.Nop{}
	}
	return &StatsService{store: store, kv: kv, ttl: ttl, logger: logger, now: time.Now}
}

func (s *StatsService) Get(ctx context.Context) (*Stats, error) {
	var st Stats
	if err := cache.GetJSON(ctx, s.kv, statsKey, &st); err == nil {
		return &st, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("stats cache read failed", zap.Error(err))
	}

	roles, err := s.store.CountRoles(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountAppointments(ctx, repository.AppointmentFilter{})
	if err != nil {
		return nil, err
	}
	today, err := s.store.CountAppointments(ctx, repository.AppointmentFilter{Date: s.now().Format(models.DateLayout)})
	if err != nil {
		return nil, err
	}
	st = Stats{
		TotalUsers:        roles.Total,
		TotalPatients:     roles.Patients,
		TotalDoctors:      roles.Doctors,
		TotalAdmins:       roles.Admins,
		TotalAppointments: total,
		TodayAppointments: today,
	}
	if err := cache.SetJSON(ctx, s.kv, statsKey, st, s.ttl); err != nil {
		s.logger.Warn("stats cache write failed", zap.Error(err))
	}
	return &st, nil
}

// Invalidate drops the cached counters.
func (s *StatsService) Invalidate(ctx context.Context) {
	if err := s.kv.Delete(ctx, statsKey); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}
