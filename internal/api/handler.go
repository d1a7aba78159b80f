package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"tubefetch/internal/core/domain"
	"tubefetch/internal/core/ports"
	"tubefetch/internal/service"
)

// JobRunner runs probes and downloads in the background.
type JobRunner interface {
	StartProbe(url string) (string, error)
	StartDownload(probeID string, req domain.DownloadRequest) (string, error)
	Get(id string) (service.Job, error)
	Cancel(id string) error
}

// Library exposes saved history and settings.
type Library interface {
	History(ctx context.Context) []domain.HistoryEntry
	Settings(ctx context.Context) domain.Settings
}

// UpdateChecker runs one self-update check.
type UpdateChecker interface {
	Check(ctx context.Context, progress ports.ProgressFunc) (*service.UpdateResult, error)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProbeRequest is the body of POST /api/probe.
type ProbeRequest struct {
	URL string `json:"url"`
}

// DownloadRequest is the body of POST /api/download.
type DownloadRequest struct {
	ProbeJobID string           `json:"probe_job_id"`
	Name       string           `json:"name"`
	Type       domain.MediaKind `json:"type"`
	Resolution string           `json:"resolution"`
	Dir        string           `json:"dir"`
}

// JobCreatedResponse carries the id of a newly started job.
type JobCreatedResponse struct {
	JobID string `json:"job_id"`
}

// Handler serves the JSON API over the job runner, history and updater.
type Handler struct {
	jobs    JobRunner
	library Library
	updater UpdateChecker // nil when self-update is disabled
	logger  zerolog.Logger
}

// NewHandler creates a Handler. updater may be nil to disable POST /api/update.
func NewHandler(jobs JobRunner, library Library, updater UpdateChecker, logger zerolog.Logger) *Handler {
	return &Handler{
		jobs:    jobs,
		library: library,
		updater: updater,
		logger:  logger,
	}
}

// SetupRoutes registers every route on app.
func (h *Handler) SetupRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Post("/probe", h.Probe)
	api.Post("/download", h.Download)
	api.Get("/jobs/:id", h.GetJob)
	api.Delete("/jobs/:id", h.CancelJob)
	api.Get("/history", h.History)
	api.Get("/settings", h.Settings)
	api.Post("/update", h.Update)
}

func (h *Handler) Probe(c *fiber.Ctx) error {
	var req ProbeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	id, err := h.jobs.StartProbe(req.URL)
	if err != nil {
		return h.fail(c, err)
	}
	h.logger.Info().Str("job", id).Str("url", req.URL).Msg("probe queued")
	return c.Status(fiber.StatusAccepted).JSON(JobCreatedResponse{JobID: id})
}

func (h *Handler) Download(c *fiber.Ctx) error {
	var req DownloadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.ProbeJobID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "probe_job_id is required"})
	}

	id, err := h.jobs.StartDownload(req.ProbeJobID, domain.DownloadRequest{
		Dir:        req.Dir,
		FileName:   req.Name,
		Kind:       req.Type,
		Resolution: req.Resolution,
	})
	if err != nil {
		return h.fail(c, err)
	}
	h.logger.Info().Str("job", id).Str("probe_job", req.ProbeJobID).Msg("download queued")
	return c.Status(fiber.StatusAccepted).JSON(JobCreatedResponse{JobID: id})
}

func (h *Handler) GetJob(c *fiber.Ctx) error {
	job, err := h.jobs.Get(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(job)
}

func (h *Handler) CancelJob(c *fiber.Ctx) error {
	if err := h.jobs.Cancel(c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) History(c *fiber.Ctx) error {
	items := h.library.History(c.Context())
	if items == nil {
		items = []domain.HistoryEntry{}
	}
	return c.JSON(items)
}

func (h *Handler) Settings(c *fiber.Ctx) error {
	settings := h.library.Settings(c.Context())
	if settings.Paths == nil {
		settings.Paths = []string{}
	}
	return c.JSON(settings)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	if h.updater == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "self-update is disabled"})
	}
	res, err := h.updater.Check(c.Context(), nil)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrJobNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrJobNotReady):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
