package api

import (
	"bytes"
	"errors"
	"strconv"
	"time"

	"github.com/Gosu20/temp-insight-reservoir/internal/bundle"
	"github.com/Gosu20/temp-insight-reservoir/internal/forecast"
	"github.com/Gosu20/temp-insight-reservoir/internal/model"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	service *forecast.Service
	logger  *zap.Logger
}

func NewHandler(service *forecast.Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// GetConditions handles GET /api/v1/conditions
func (h *Handler) GetConditions(c *fiber.Ctx) error {
	conditions, adjustment := h.service.Live()

	resp := fiber.Map{
		"conditions": conditions,
		"adjustment": adjustment,
	}
	if snap, ok := h.service.Current(); ok {
		resp["snapshot"] = snap
	}

	return c.JSON(resp)
}

// UpdateConditions handles PUT /api/v1/conditions
func (h *Handler) UpdateConditions(c *fiber.Ctx) error {
	var conditions model.ObservedConditions
	if err := c.BodyParser(&conditions); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
	}

	if err := conditions.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid conditions",
			"details": err.Error(),
		})
	}

	h.service.SetConditions(conditions)
	h.logger.Info("Conditions updated",
		zap.Float64("outflow_temp", conditions.OutflowTemp))

	return c.JSON(fiber.Map{"conditions": conditions})
}

// UpdateAdjustment handles PUT /api/v1/adjustment
func (h *Handler) UpdateAdjustment(c *fiber.Ctx) error {
	var adjustment model.ScenarioAdjustment
	if err := c.BodyParser(&adjustment); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
	}

	if err := adjustment.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid adjustment",
			"details": err.Error(),
		})
	}

	h.service.SetAdjustment(adjustment)
	h.logger.Info("Adjustment updated",
		zap.Float64("discharge_pct", adjustment.DischargePercentChange))

	return c.JSON(fiber.Map{"adjustment": adjustment})
}

// GenerateForecast handles POST /api/v1/forecast. It commits a
// snapshot of the live inputs; forecast reads are pinned to it until
// the next commit.
func (h *Handler) GenerateForecast(c *fiber.Ctx) error {
	snap, err := h.service.Commit(c.Context())
	if err != nil {
		h.logger.Error("Failed to commit forecast snapshot", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to generate forecast",
			"details": err.Error(),
		})
	}

	return c.JSON(snap)
}

// GetForecast handles GET /api/v1/forecast
func (h *Handler) GetForecast(c *fiber.Ctx) error {
	daysStr := c.Query("horizon", "1")
	days, err := strconv.Atoi(daysStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Horizon parameter must be 1, 3 or 7",
		})
	}

	horizon, err := model.ParseHorizon(days)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Horizon parameter must be 1, 3 or 7",
		})
	}

	result, err := h.service.Forecast(horizon)
	if err != nil {
		if errors.Is(err, forecast.ErrNoSnapshot) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "No forecast generated yet",
			})
		}

		h.logger.Error("Failed to compute forecast",
			zap.Int("horizon", days),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to compute forecast",
			"details": err.Error(),
		})
	}

	return c.JSON(result)
}

// GetImportance handles GET /api/v1/importance
func (h *Handler) GetImportance(c *fiber.Ctx) error {
	entries, err := h.service.Importance()
	if err != nil {
		if errors.Is(err, forecast.ErrNoSnapshot) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "No forecast generated yet",
			})
		}

		h.logger.Error("Failed to compute feature importance", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to compute feature importance",
			"details": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"features": entries})
}

// GetBundle handles GET /api/v1/bundle. The archive carries fixed
// methodology documents, never live model output.
func (h *Handler) GetBundle(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := bundle.WriteArchive(&buf); err != nil {
		h.logger.Error("Failed to build methodology bundle", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build bundle",
		})
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+bundle.ArchiveName+`"`)
	return c.Send(buf.Bytes())
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
		"stats":     h.service.Stats(),
	})
}

// GetMetrics handles GET /api/v1/metrics
func (h *Handler) GetMetrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"metrics":   h.service.Stats(),
		"timestamp": time.Now(),
	})
}

var startTime = time.Now()
