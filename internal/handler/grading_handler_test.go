package handler_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-ed/inkwell-api/internal/dto"
	"github.com/inkwell-ed/inkwell-api/internal/handler"
	"github.com/inkwell-ed/inkwell-api/internal/service"
)

type mockGradingService struct {
	lastAssignmentID uint
	lastSubmissions  []uint
	lastBatchID      string

	started  dto.BatchStartedResponse
	progress dto.BatchProgressResponse
	feedback dto.SubmissionFeedbackResponse
	err      error
}

func (m *mockGradingService) Run(_ context.Context, assignmentID uint, submissionIDs []uint) (dto.BatchStartedResponse, error) {
	m.lastAssignmentID = assignmentID
	m.lastSubmissions = submissionIDs
	if m.err != nil {
		return dto.BatchStartedResponse{}, m.err
	}
	return m.started, nil
}

func (m *mockGradingService) RunSingle(_ context.Context, submissionID uint) (dto.BatchStartedResponse, error) {
	if m.err != nil {
		return dto.BatchStartedResponse{}, m.err
	}
	return m.started, nil
}

func (m *mockGradingService) Progress(_ context.Context, batchID string) (dto.BatchProgressResponse, error) {
	m.lastBatchID = batchID
	if m.err != nil {
		return dto.BatchProgressResponse{}, m.err
	}
	return m.progress, nil
}

func (m *mockGradingService) Feedback(_ context.Context, submissionID uint) (dto.SubmissionFeedbackResponse, error) {
	if m.err != nil {
		return dto.SubmissionFeedbackResponse{}, m.err
	}
	return m.feedback, nil
}

func newGradingApp(svc service.GradingService) *fiber.App {
	h := handler.NewGradingHandler(svc, zerolog.Nop())
	app := fiber.New()
	h.Register(app.Group("/api/grading"))
	return app
}

func TestGradingHandler_GradeAssignmentAccepted(t *testing.T) {
	svc := &mockGradingService{started: dto.BatchStartedResponse{BatchID: "batch-1", Total: 3}}
	app := newGradingApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/grading/assignments/7/grade", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Equal(t, uint(7), svc.lastAssignmentID)
	require.Empty(t, svc.lastSubmissions)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "batch-1")
}

func TestGradingHandler_GradeAssignmentWithSubset(t *testing.T) {
	svc := &mockGradingService{started: dto.BatchStartedResponse{BatchID: "batch-2", Total: 2}}
	app := newGradingApp(svc)

	payload := strings.NewReader(`{"submission_ids":[4,9]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/grading/assignments/7/grade", payload)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Equal(t, []uint{4, 9}, svc.lastSubmissions)
}

func TestGradingHandler_GradeAssignmentNotFound(t *testing.T) {
	svc := &mockGradingService{err: service.ErrGradingAssignmentNotFound}
	app := newGradingApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/grading/assignments/404/grade", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGradingHandler_GradeAssignmentEmpty(t *testing.T) {
	svc := &mockGradingService{err: service.ErrNoSubmissions}
	app := newGradingApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/grading/assignments/7/grade", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestGradingHandler_GradeAssignmentBadID(t *testing.T) {
	svc := &mockGradingService{}
	app := newGradingApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/grading/assignments/abc/grade", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGradingHandler_RegradeAccepted(t *testing.T) {
	svc := &mockGradingService{started: dto.BatchStartedResponse{BatchID: "batch-3", Total: 1}}
	app := newGradingApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/grading/submissions/12/regrade", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestGradingHandler_BatchProgress(t *testing.T) {
	svc := &mockGradingService{progress: dto.BatchProgressResponse{
		BatchID:   "batch-4",
		Total:     5,
		Attempted: 3,
		Completed: 2,
	}}
	app := newGradingApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/grading/batches/batch-4", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "batch-4", svc.lastBatchID)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `"attempted":3`)
}

func TestGradingHandler_BatchProgressUnknown(t *testing.T) {
	svc := &mockGradingService{err: service.ErrBatchNotFound}
	app := newGradingApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/grading/batches/missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGradingHandler_SubmissionFeedback(t *testing.T) {
	svc := &mockGradingService{feedback: dto.SubmissionFeedbackResponse{
		SubmissionID: 12,
		Status:       "ready",
		InlineComments: []dto.InlineCommentResponse{
			{CriterionID: 1, QuotedText: "the thesis", Comment: "Sharpen this claim.", StartOffset: 0, EndOffset: 10},
		},
	}}
	app := newGradingApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/grading/submissions/12/feedback", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "Sharpen this claim.")
}

func TestGradingHandler_SubmissionFeedbackUnknown(t *testing.T) {
	svc := &mockGradingService{err: service.ErrGradingSubmissionNotFound}
	app := newGradingApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/grading/submissions/404/feedback", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGradingHandler_InternalError(t *testing.T) {
	svc := &mockGradingService{err: errors.New("boom")}
	app := newGradingApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/grading/batches/batch-5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
