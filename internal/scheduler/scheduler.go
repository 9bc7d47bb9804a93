package scheduler

import (
	"context"
	"fmt"
	"time"

	"edgesync/internal/config"
	"edgesync/internal/logger"
	"edgesync/internal/sync"

	"github.com/robfig/cron/v3"
)

// Delay between chunks when a scheduled flow continues itself. Customers
// are cheap; product chunks may download images.
const (
	customerChunkDelay = 10 * time.Second
	productChunkDelay  = 30 * time.Second
)

// Scheduler kicks off the import flows on their configured intervals and
// then walks each started job chunk by chunk until it completes. It runs
// against the "scheduled" coordinator, so a running interactive import is
// never disturbed.
type Scheduler struct {
	logger      *logger.Logger
	cfg         *config.Config
	coordinator *sync.Coordinator
	cron        *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

func New(cfg *config.Config, logger *logger.Logger, coordinator *sync.Coordinator) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger:      logger,
		cfg:         cfg,
		coordinator: coordinator,
		cron:        cron.New(),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (s *Scheduler) Start() error {
	if s.cfg.CustomerCronEnabled {
		spec := cronSpec(s.cfg.CustomerCronInterval, s.cfg.CustomerCronCustomMinutes)
		if _, err := s.cron.AddFunc(spec, func() {
			s.runFlow(sync.FlowCustomerImport, customerChunkDelay)
		}); err != nil {
			return fmt.Errorf("failed to schedule customer import: %w", err)
		}
		s.logger.Info("Customer import scheduled: %s", spec)
	}

	if s.cfg.ProductCronEnabled {
		spec := cronSpec(s.cfg.ProductCronInterval, s.cfg.ProductCronCustomMinutes)
		if _, err := s.cron.AddFunc(spec, func() {
			s.runFlow(sync.FlowProductImport, productChunkDelay)
		}); err != nil {
			return fmt.Errorf("failed to schedule product import: %w", err)
		}
		s.logger.Info("Product import scheduled: %s", spec)
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// runFlow advances a flow to completion, pausing between chunks so a big
// source file does not monopolize the connection.
func (s *Scheduler) runFlow(flow sync.Flow, delay time.Duration) {
	s.logger.Info("Scheduled %s starting", flow)

	for {
		status, err := s.coordinator.Advance(s.ctx, flow)
		if err != nil {
			s.logger.Error("Scheduled %s aborted: %v", flow, err)
			return
		}
		if status.IsComplete {
			s.logger.Info("Scheduled %s complete: %s", flow, status.Message)
			return
		}

		select {
		case <-s.ctx.Done():
			s.logger.Info("Scheduled %s paused by shutdown, will resume next run", flow)
			return
		case <-time.After(delay):
		}
	}
}

// cronSpec maps a storefront-style interval name onto a cron expression.
func cronSpec(interval string, customMinutes int) string {
	switch interval {
	case "hourly":
		return "@every 1h"
	case "twicedaily":
		return "@every 12h"
	case "weekly":
		return "@every 168h"
	case "custom":
		return fmt.Sprintf("@every %dm", customMinutes)
	default: // daily
		return "@every 24h"
	}
}
