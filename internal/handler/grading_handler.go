package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/inkwell-ed/inkwell-api/internal/dto"
	"github.com/inkwell-ed/inkwell-api/internal/service"
	"github.com/inkwell-ed/inkwell-api/internal/utils"
)

// GradingHandler exposes the feedback pipeline: batch triggers, single
// regrades, progress polling and result retrieval.
type GradingHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradingHandler builds a grading handler instance.
func NewGradingHandler(service service.GradingService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *GradingHandler) Register(router fiber.Router) {
	router.Post("/assignments/:id/grade", h.gradeAssignment)
	router.Post("/submissions/:id/regrade", h.regradeSubmission)
	router.Get("/batches/:batchId", h.batchProgress)
	router.Get("/submissions/:id/feedback", h.submissionFeedback)
}

// gradeAssignment starts a detached batch run and returns immediately; the
// caller polls batchProgress to follow it.
func (h *GradingHandler) gradeAssignment(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GradeAssignmentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	started, err := h.service.Run(c.Context(), assignmentID, payload.SubmissionIDs)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendAccepted(c, "grading started", started)
}

func (h *GradingHandler) regradeSubmission(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	started, err := h.service.RunSingle(c.Context(), submissionID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendAccepted(c, "regrade started", started)
}

func (h *GradingHandler) batchProgress(c *fiber.Ctx) error {
	progress, err := h.service.Progress(c.Context(), c.Params("batchId"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "batch progress", progress)
}

func (h *GradingHandler) submissionFeedback(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	feedback, err := h.service.Feedback(c.Context(), submissionID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission feedback", feedback)
}

func (h *GradingHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrGradingAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrGradingSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrBatchNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "grading batch not found")
	case errors.Is(err, service.ErrNoSubmissions):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "assignment has no submissions to grade")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
