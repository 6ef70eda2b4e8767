package scheduler

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/joy095/boardroom/logger"
	"github.com/joy095/boardroom/models/booking_models"
	"github.com/joy095/boardroom/notifications"
)

const (
	defaultTickSeconds      = 60
	defaultLookaheadMinutes = 15

	leaseKey = "reminder_scheduler:lease"
)

// ReminderScheduler periodically scans confirmed future bookings and emits a
// one-time reminder per booking ahead of start time. The authoritative
// de-duplication is the conditional reminder_sent flip in the database; the
// Redis lease only keeps multiple instances from scanning the same tick.
type ReminderScheduler struct {
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Notifier notifications.Notifier

	Tick      time.Duration
	Lookahead time.Duration

	instanceID string
}

// NewReminderSchedulerFromEnv builds a scheduler configured by
// REMINDER_TICK_SECONDS and REMINDER_LOOKAHEAD_MINUTES.
func NewReminderSchedulerFromEnv(db *pgxpool.Pool, rdb *redis.Client, notifier notifications.Notifier) *ReminderScheduler {
	return &ReminderScheduler{
		DB:         db,
		Redis:      rdb,
		Notifier:   notifier,
		Tick:       time.Duration(envInt("REMINDER_TICK_SECONDS", defaultTickSeconds)) * time.Second,
		Lookahead:  time.Duration(envInt("REMINDER_LOOKAHEAD_MINUTES", defaultLookaheadMinutes)) * time.Minute,
		instanceID: uuid.NewString(),
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		logger.WarnLogger.Warnf("Invalid %s value %q, using default %d", key, raw, fallback)
		return fallback
	}
	return value
}

// Run loops until the context is cancelled. Intended to be started once from
// main on its own goroutine.
func (s *ReminderScheduler) Run(ctx context.Context) {
	logger.InfoLogger.Infof("Reminder scheduler started (tick %s, look-ahead %s)", s.Tick, s.Lookahead)

	ticker := time.NewTicker(s.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoLogger.Info("Reminder scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *ReminderScheduler) tick(ctx context.Context) {
	if !s.acquireLease(ctx) {
		logger.DebugLogger.Debug("Reminder lease held elsewhere, skipping tick")
		return
	}

	now := time.Now().UTC()
	due, err := booking_models.GetDueReminders(ctx, s.DB, now, now.Add(s.Lookahead))
	if err != nil {
		logger.ErrorLogger.Errorf("Reminder scan failed: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	logger.InfoLogger.Infof("Reminder scan found %d booking(s) starting within %s", len(due), s.Lookahead)

	for i := range due {
		booking := due[i]

		won, err := booking_models.MarkReminderSent(ctx, s.DB, booking.ID)
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to mark reminder for booking %s: %v", booking.ID, err)
			continue
		}
		if !won {
			// Another instance flipped the marker first.
			continue
		}

		s.Notifier.Dispatch(ctx, notifications.Event{
			Kind:    notifications.KindReminder,
			Booking: &booking,
		})
		logger.InfoLogger.Infof("Reminder emitted for booking %s (starts %s)", booking.ID, booking.StartTime)
	}
}

// leaseTTL keeps the lease shorter than the tick so it expires before the
// next scan, but never below one second: go-redis treats a zero expiration as
// "no expiry", which would leave the lease held forever.
func (s *ReminderScheduler) leaseTTL() time.Duration {
	ttl := s.Tick - time.Second
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

// acquireLease grabs a short-lived SetNX lease so concurrent scheduler
// instances do not all scan on the same tick. Without Redis every instance
// scans; the conditional update still guarantees single emission.
func (s *ReminderScheduler) acquireLease(ctx context.Context) bool {
	if s.Redis == nil {
		return true
	}
	ok, err := s.Redis.SetNX(ctx, leaseKey, s.instanceID, s.leaseTTL()).Result()
	if err != nil {
		logger.WarnLogger.Warnf("Reminder lease check failed, proceeding without lease: %v", err)
		return true
	}
	return ok
}
