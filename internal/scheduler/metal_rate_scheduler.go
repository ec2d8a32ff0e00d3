package scheduler

import (
	"github.com/robfig/cron/v3"

	"github.com/nravish/kanakam-backend/internal/app/service"
	"github.com/nravish/kanakam-backend/pkg/logger"
)

// MetalRateScheduler refreshes market quotes from the external feed on a
// cron schedule so dynamic pricing tracks the market without manual input.
type MetalRateScheduler struct {
	cron        *cron.Cron
	rateService service.MetalRateService
	spec        string
}

func NewMetalRateScheduler(rateService service.MetalRateService, spec string) *MetalRateScheduler {
	return &MetalRateScheduler{
		cron:        cron.New(),
		rateService: rateService,
		spec:        spec,
	}
}

// Start registers the refresh job and starts the cron loop.
func (s *MetalRateScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		logger.Info("Starting scheduled metal rate refresh", nil)

		if err := s.rateService.RefreshFromFeed(); err != nil {
			logger.Error("Failed to refresh metal rates from scheduler", err)
			return
		}

		logger.Info("Successfully refreshed metal rates from scheduler", nil)
	})

	if err != nil {
		logger.Error("Failed to add cron job for metal rate refresh", err)
		return err
	}

	s.cron.Start()
	logger.Info("Metal rate scheduler started successfully", map[string]interface{}{
		"schedule": s.spec,
	})

	return nil
}

// Stop halts the cron loop; in-flight jobs finish on their own.
func (s *MetalRateScheduler) Stop() {
	logger.Info("Stopping metal rate scheduler...", nil)
	s.cron.Stop()
	logger.Info("Metal rate scheduler stopped", nil)
}
