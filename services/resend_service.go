package services

import (
	"context"
	"time"

	"ibaclean-backend/models"
	"ibaclean-backend/repositories"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ResendSweeper periodically redelivers confirmations whose latest attempt
// failed. It works from the attempt log alone.
type ResendSweeper struct {
	attempts    repositories.AttemptRepository
	dispatcher  *Dispatcher
	maxAttempts int
	lookback    time.Duration
	logger      *logrus.Logger
	cron        *cron.Cron
}

func NewResendSweeper(attempts repositories.AttemptRepository, dispatcher *Dispatcher, maxAttempts int, lookback time.Duration, logger *logrus.Logger) *ResendSweeper {
	return &ResendSweeper{
		attempts:    attempts,
		dispatcher:  dispatcher,
		maxAttempts: maxAttempts,
		lookback:    lookback,
		logger:      logger,
	}
}

// Start schedules the sweep. An empty schedule leaves it disabled.
func (s *ResendSweeper) Start(schedule string) error {
	if schedule == "" {
		s.logger.Info("Resend sweep disabled")
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(s.logger))))
	if _, err := c.AddFunc(schedule, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			s.logger.WithError(err).Error("Resend sweep failed")
		}
	}); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	s.logger.WithField("schedule", schedule).Info("Resend sweep scheduler started")
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *ResendSweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

type attemptKey struct {
	bookingID uint
	channel   models.Channel
}

type attemptHistory struct {
	count  int
	latest *models.NotificationAttempt
}

// RunOnce redelivers every booking channel whose most recent attempt within
// the lookback window failed with a retryable error and that has fewer than
// maxAttempts attempts. It returns how many redeliveries were made.
func (s *ResendSweeper) RunOnce(ctx context.Context) (int, error) {
	attempts, err := s.attempts.ListSince(ctx, time.Now().Add(-s.lookback))
	if err != nil {
		return 0, err
	}

	var order []attemptKey
	histories := make(map[attemptKey]*attemptHistory)
	for i := range attempts {
		a := &attempts[i]
		key := attemptKey{bookingID: a.BookingID, channel: a.Channel}
		h, ok := histories[key]
		if !ok {
			h = &attemptHistory{}
			histories[key] = h
			order = append(order, key)
		}
		h.count++
		h.latest = a
	}

	resent := 0
	for _, key := range order {
		h := histories[key]
		if h.latest.Outcome != models.OutcomeFailed || h.count >= s.maxAttempts || !retryable(h.latest.ErrorClass) {
			continue
		}
		outcome := s.dispatcher.Redeliver(ctx, h.latest)
		resent++
		s.logger.WithFields(logrus.Fields{
			"booking_id": key.bookingID,
			"channel":    key.channel,
			"attempt":    h.count + 1,
			"sent":       outcome.Sent,
		}).Info("Redelivered notification")
	}
	return resent, nil
}

// Rendering and recipient failures come out the same on every try.
func retryable(errorClass string) bool {
	return errorClass == models.ErrorClassTimeout || errorClass == models.ErrorClassProvider
}
