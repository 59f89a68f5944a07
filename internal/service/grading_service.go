package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/inkwell-ed/inkwell-api/internal/anchor"
	"github.com/inkwell-ed/inkwell-api/internal/dto"
	"github.com/inkwell-ed/inkwell-api/internal/models"
	"github.com/inkwell-ed/inkwell-api/internal/observability"
	"github.com/inkwell-ed/inkwell-api/internal/repository"
	"github.com/inkwell-ed/inkwell-api/pkg/ai"
)

// ErrGradingAssignmentNotFound indicates the assignment was not located.
var ErrGradingAssignmentNotFound = errors.New("assignment not found")

// ErrGradingSubmissionNotFound indicates the submission was not located.
var ErrGradingSubmissionNotFound = errors.New("submission not found")

// ErrNoSubmissions indicates the batch has nothing to grade.
var ErrNoSubmissions = errors.New("assignment has no submissions to grade")

// GradingService drives AI feedback generation. Run and RunSingle return as
// soon as the batch is registered; grading executes on a detached goroutine
// and callers poll Progress to follow it.
type GradingService interface {
	Run(ctx context.Context, assignmentID uint, submissionIDs []uint) (dto.BatchStartedResponse, error)
	RunSingle(ctx context.Context, submissionID uint) (dto.BatchStartedResponse, error)
	Progress(ctx context.Context, batchID string) (dto.BatchProgressResponse, error)
	Feedback(ctx context.Context, submissionID uint) (dto.SubmissionFeedbackResponse, error)
}

type gradingService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	feedback    repository.FeedbackRepository
	generator   ai.Generator
	progress    ProgressStore
	// limiter is the shared inter-call floor across ALL model calls in the
	// process. Sharing one limiter is what keeps two concurrently triggered
	// batches inside the account-wide rate budget.
	limiter *rate.Limiter
	logger  zerolog.Logger
	now     func() time.Time
	// spawn runs the batch; tests replace it to grade synchronously.
	spawn func(fn func())
}

// NewGradingService constructs the orchestrator. The limiter must be the
// process-wide one; per-batch limiters would defeat its purpose.
func NewGradingService(
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	feedback repository.FeedbackRepository,
	generator ai.Generator,
	progress ProgressStore,
	limiter *rate.Limiter,
	logger zerolog.Logger,
) GradingService {
	return &gradingService{
		assignments: assignments,
		submissions: submissions,
		feedback:    feedback,
		generator:   generator,
		progress:    progress,
		limiter:     limiter,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		now:         time.Now,
		spawn:       func(fn func()) { go fn() },
	}
}

func (s *gradingService) Run(ctx context.Context, assignmentID uint, submissionIDs []uint) (dto.BatchStartedResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BatchStartedResponse{}, ErrGradingAssignmentNotFound
		}
		return dto.BatchStartedResponse{}, err
	}

	ids := submissionIDs
	if len(ids) == 0 {
		ids, err = s.submissions.ListIDsByAssignment(ctx, assignmentID)
		if err != nil {
			return dto.BatchStartedResponse{}, err
		}
	}
	if len(ids) == 0 {
		return dto.BatchStartedResponse{}, ErrNoSubmissions
	}

	return s.start(ctx, assignment, ids)
}

func (s *gradingService) RunSingle(ctx context.Context, submissionID uint) (dto.BatchStartedResponse, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BatchStartedResponse{}, ErrGradingSubmissionNotFound
		}
		return dto.BatchStartedResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, submission.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BatchStartedResponse{}, ErrGradingAssignmentNotFound
		}
		return dto.BatchStartedResponse{}, err
	}

	return s.start(ctx, assignment, []uint{submissionID})
}

// start registers the batch and detaches. The caller's context is not carried
// into the batch: the triggering request finishes long before grading does.
func (s *gradingService) start(ctx context.Context, assignment models.Assignment, ids []uint) (dto.BatchStartedResponse, error) {
	batchID := uuid.NewString()
	if err := s.progress.Start(ctx, batchID, len(ids)); err != nil {
		return dto.BatchStartedResponse{}, fmt.Errorf("register batch: %w", err)
	}

	s.spawn(func() {
		s.processBatch(context.Background(), batchID, assignment, ids)
	})

	return dto.BatchStartedResponse{BatchID: batchID, Total: len(ids)}, nil
}

// processBatch grades submissions strictly sequentially. The provider's rate
// limit is a per-account budget, so there is no fan-out; one submission's
// failure never blocks its siblings.
func (s *gradingService) processBatch(ctx context.Context, batchID string, assignment models.Assignment, ids []uint) {
	logger := s.logger.With().Str("batch_id", batchID).Uint("assignment_id", assignment.ID).Logger()
	logger.Info().Int("submissions", len(ids)).Msg("grading batch started")

	observability.BatchesInFlight().Inc()
	defer observability.BatchesInFlight().Dec()

	for _, submissionID := range ids {
		err := s.gradeSubmission(ctx, assignment, submissionID)

		if markErr := s.progress.MarkAttempted(ctx, batchID); markErr != nil {
			logger.Warn().Err(markErr).Msg("failed to record attempted progress")
		}

		if err != nil {
			observability.GradedSubmissions().WithLabelValues(models.SubmissionStatusFailed).Inc()
			event := logger.Error()
			if errors.Is(err, ai.ErrDailyQuota) {
				// Later submissions will predictably hit the same wall, but a
				// call-specific quota misread is possible; keep going.
				event = logger.Warn()
			}
			event.Err(err).Uint("submission_id", submissionID).Msg("submission grading failed")
			continue
		}

		observability.GradedSubmissions().WithLabelValues(models.SubmissionStatusReady).Inc()
		if markErr := s.progress.MarkCompleted(ctx, batchID); markErr != nil {
			logger.Warn().Err(markErr).Msg("failed to record completed progress")
		}
	}

	logger.Info().Msg("grading batch finished")
}

// gradeSubmission runs the three prompt stages for one submission. Any stage
// error marks the submission failed; it becomes ready only after all stages
// succeed and their results are persisted.
func (s *gradingService) gradeSubmission(ctx context.Context, assignment models.Assignment, submissionID uint) error {
	tracer := otel.Tracer("github.com/inkwell-ed/inkwell-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.submission", trace.WithAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
	))
	defer span.End()

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return fmt.Errorf("load submission %d: %w", submissionID, err)
	}

	if err := s.submissions.UpdateStatus(ctx, submissionID, models.SubmissionStatusProcessing); err != nil {
		span.RecordError(err)
		return fmt.Errorf("mark submission %d processing: %w", submissionID, err)
	}

	stages := []struct {
		name string
		run  func(context.Context, models.Assignment, models.Submission) error
	}{
		{"inline_comments", s.stageInlineComments},
		{"criterion_feedback", s.stageCriterionFeedback},
		{"overall_feedback", s.stageOverallFeedback},
	}

	for _, stage := range stages {
		start := s.now()
		err := stage.run(ctx, assignment, submission)
		observability.GradingStageDuration().WithLabelValues(stage.name).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, stage.name)
			if statusErr := s.submissions.UpdateStatus(ctx, submissionID, models.SubmissionStatusFailed); statusErr != nil {
				s.logger.Error().Err(statusErr).Uint("submission_id", submissionID).Msg("failed to mark submission failed")
			}
			return fmt.Errorf("%s stage: %w", stage.name, err)
		}
	}

	if err := s.submissions.MarkGraded(ctx, submissionID, s.now()); err != nil {
		span.RecordError(err)
		return fmt.Errorf("mark submission %d ready: %w", submissionID, err)
	}

	span.SetAttributes(attribute.String("grading.status", models.SubmissionStatusReady))
	return nil
}

// callModel enforces the shared pacing floor before every model call. The
// floor is preventive; the reactive backoff in pkg/ai only engages after a
// rate-limit error has already been observed.
func (s *gradingService) callModel(ctx context.Context, prompt string) (string, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	return s.generator.Generate(ctx, prompt)
}

func (s *gradingService) stageInlineComments(ctx context.Context, assignment models.Assignment, submission models.Submission) error {
	text, err := s.callModel(ctx, buildInlineCommentsPrompt(assignment, submission.ExtractedText))
	if err != nil {
		return err
	}

	items, err := parseInlineComments(text)
	if err != nil {
		return err
	}

	known := knownCriteria(assignment)
	comments := make([]models.InlineComment, 0, len(items))
	for _, item := range items {
		if !known[item.CriterionID] {
			s.logger.Debug().Uint("criterion_id", item.CriterionID).Msg("dropping comment for unknown criterion")
			continue
		}

		r, ok := anchor.Resolve(submission.ExtractedText, item.Quote)
		if !ok {
			// Degradation, not an error: the submission keeps its other feedback.
			observability.AnchorResolutions().WithLabelValues("dropped").Inc()
			s.logger.Debug().Uint("submission_id", submission.ID).Str("quote", item.Quote).Msg("passage did not resolve, dropping comment")
			continue
		}
		observability.AnchorResolutions().WithLabelValues("resolved").Inc()

		comments = append(comments, models.InlineComment{
			SubmissionID: submission.ID,
			CriterionID:  item.CriterionID,
			QuotedText:   submission.ExtractedText[r.Start:r.End],
			Comment:      item.Comment,
			StartOffset:  r.Start,
			EndOffset:    r.End,
			Position:     len(comments),
		})
	}

	return s.feedback.ReplaceInlineComments(ctx, submission.ID, comments)
}

func (s *gradingService) stageCriterionFeedback(ctx context.Context, assignment models.Assignment, submission models.Submission) error {
	text, err := s.callModel(ctx, buildCriterionFeedbackPrompt(assignment, submission.ExtractedText))
	if err != nil {
		return err
	}

	items, err := parseCriterionFeedback(text)
	if err != nil {
		return err
	}

	known := knownCriteria(assignment)
	feedback := make([]models.CriterionFeedback, 0, len(items))
	for _, item := range items {
		if !known[item.CriterionID] {
			s.logger.Debug().Uint("criterion_id", item.CriterionID).Msg("dropping feedback for unknown criterion")
			continue
		}

		suggestions, err := json.Marshal(item.Suggestions)
		if err != nil {
			return fmt.Errorf("encode suggestions: %w", err)
		}

		feedback = append(feedback, models.CriterionFeedback{
			SubmissionID: submission.ID,
			CriterionID:  item.CriterionID,
			Strengths:    item.Strengths,
			Growth:       item.Growth,
			Suggestions:  suggestions,
		})
	}

	return s.feedback.ReplaceCriterionFeedback(ctx, submission.ID, feedback)
}

func (s *gradingService) stageOverallFeedback(ctx context.Context, assignment models.Assignment, submission models.Submission) error {
	text, err := s.callModel(ctx, buildOverallFeedbackPrompt(assignment, submission.ExtractedText))
	if err != nil {
		return err
	}

	payload, err := parseOverallFeedback(text)
	if err != nil {
		return err
	}

	priorities, err := json.Marshal(payload.Priorities)
	if err != nil {
		return fmt.Errorf("encode priorities: %w", err)
	}
	nextSteps, err := json.Marshal(payload.NextSteps)
	if err != nil {
		return fmt.Errorf("encode next steps: %w", err)
	}

	return s.feedback.UpsertOverallFeedback(ctx, &models.OverallFeedback{
		SubmissionID: submission.ID,
		Summary:      payload.Summary,
		Priorities:   priorities,
		NextSteps:    nextSteps,
	})
}

func (s *gradingService) Progress(ctx context.Context, batchID string) (dto.BatchProgressResponse, error) {
	progress, err := s.progress.Get(ctx, batchID)
	if err != nil {
		return dto.BatchProgressResponse{}, err
	}

	return dto.BatchProgressResponse{
		BatchID:   batchID,
		Total:     progress.Total,
		Attempted: progress.Attempted,
		Completed: progress.Completed,
	}, nil
}

func (s *gradingService) Feedback(ctx context.Context, submissionID uint) (dto.SubmissionFeedbackResponse, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionFeedbackResponse{}, ErrGradingSubmissionNotFound
		}
		return dto.SubmissionFeedbackResponse{}, err
	}

	stored, err := s.feedback.GetBySubmission(ctx, submissionID)
	if err != nil {
		return dto.SubmissionFeedbackResponse{}, err
	}

	response := dto.SubmissionFeedbackResponse{
		SubmissionID:      submissionID,
		Status:            submission.Status,
		GradedAt:          submission.GradedAt,
		InlineComments:    make([]dto.InlineCommentResponse, 0, len(stored.InlineComments)),
		CriterionFeedback: make([]dto.CriterionFeedbackResponse, 0, len(stored.CriterionFeedback)),
	}

	for _, comment := range stored.InlineComments {
		response.InlineComments = append(response.InlineComments, dto.InlineCommentResponse{
			CriterionID: comment.CriterionID,
			QuotedText:  comment.QuotedText,
			Comment:     comment.Comment,
			StartOffset: comment.StartOffset,
			EndOffset:   comment.EndOffset,
		})
	}

	for _, block := range stored.CriterionFeedback {
		response.CriterionFeedback = append(response.CriterionFeedback, dto.CriterionFeedbackResponse{
			CriterionID: block.CriterionID,
			Strengths:   block.Strengths,
			Growth:      block.Growth,
			Suggestions: decodeStringList(block.Suggestions),
		})
	}

	if stored.Overall != nil {
		response.Overall = &dto.OverallFeedbackResponse{
			Summary:    stored.Overall.Summary,
			Priorities: decodeStringList(stored.Overall.Priorities),
			NextSteps:  decodeStringList(stored.Overall.NextSteps),
		}
	}

	return response, nil
}

func knownCriteria(assignment models.Assignment) map[uint]bool {
	known := make(map[uint]bool, len(assignment.Criteria))
	for _, criterion := range assignment.Criteria {
		known[criterion.ID] = true
	}
	return known
}

func decodeStringList(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}
