package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/desivolt/muzdesk/internal/config"
	"github.com/desivolt/muzdesk/internal/domain"
	"github.com/desivolt/muzdesk/internal/repository"
)

// OverdueSweeper reports open tickets older than the resolution window.
// It never modifies a ticket.
type OverdueSweeper struct {
	tickets repository.TicketRepository
	window  time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewOverdueSweeper builds a sweeper for the given window.
func NewOverdueSweeper(tickets repository.TicketRepository, window time.Duration, logger *zap.Logger) *OverdueSweeper {
	return &OverdueSweeper{tickets: tickets, window: window, now: time.Now, logger: logger}
}

// Sweep logs each overdue ticket and returns them.
func (s *OverdueSweeper) Sweep(ctx context.Context) ([]domain.Ticket, error) {
	cutoff := s.now().Add(-s.window)
	overdue, err := s.tickets.List(ctx, repository.TicketFilter{
		Statuses:      []domain.TicketStatus{domain.TicketStatusPending, domain.TicketStatusInProgress},
		CreatedBefore: &cutoff,
	})
	if err != nil {
		return nil, fmt.Errorf("list overdue tickets: %w", err)
	}

	for _, t := range overdue {
		fields := []zap.Field{
			zap.String("ticket_number", t.TicketNumber),
			zap.String("status", string(t.Status)),
			zap.Duration("age", s.now().Sub(t.CreatedAt).Round(time.Minute)),
		}
		if t.AssignedTo != nil {
			fields = append(fields, zap.String("assigned_to", *t.AssignedTo))
		}
		s.logger.Warn("ticket overdue", fields...)
	}
	s.logger.Info("overdue sweep finished",
		zap.Int("overdue", len(overdue)),
		zap.Duration("window", s.window))
	return overdue, nil
}

// StartSLAWorker schedules the sweep. The caller stops the returned cron.
func StartSLAWorker(cfg config.SLAConfig, sweeper *OverdueSweeper, logger *zap.Logger) (*cron.Cron, error) {
	if !cfg.Enabled || sweeper == nil {
		logger.Info("overdue sweep disabled")
		return nil, nil
	}

	// Business hours follow Indian Standard Time.
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.FixedZone("IST", 5*60*60+30*60)
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := sweeper.Sweep(ctx); err != nil {
			logger.Error("overdue sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid SLA_SWEEP_SCHEDULE %q: %w", cfg.Schedule, err)
	}

	c.Start()
	logger.Info("overdue sweep scheduled", zap.String("schedule", cfg.Schedule), zap.Int("sla_hours", cfg.Hours))
	return c, nil
}
