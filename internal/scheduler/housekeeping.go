package scheduler

import (
	"time"

	"github.com/Gosu20/temp-insight-reservoir/internal/forecast"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Housekeeper runs periodic maintenance: a cache sweep plus a stats
// line so operators can watch service activity without hitting the
// metrics endpoint.
type Housekeeper struct {
	service *forecast.Service
	logger  *zap.Logger
	spec    string
	cron    *cron.Cron
}

func NewHousekeeper(service *forecast.Service, spec string, logger *zap.Logger) *Housekeeper {
	return &Housekeeper{
		service: service,
		logger:  logger,
		spec:    spec,
		cron:    cron.New(),
	}
}

func (h *Housekeeper) Start() error {
	if _, err := h.cron.AddFunc(h.spec, h.run); err != nil {
		return err
	}

	h.cron.Start()
	h.logger.Info("Housekeeping started", zap.String("spec", h.spec))
	return nil
}

func (h *Housekeeper) run() {
	start := time.Now()
	h.service.SweepCache()

	h.logger.Info("Housekeeping pass completed",
		zap.Duration("duration", time.Since(start)),
		zap.Any("stats", h.service.Stats()))
}

func (h *Housekeeper) Stop() {
	ctx := h.cron.Stop()
	<-ctx.Done()
	h.logger.Info("Housekeeping stopped")
}
