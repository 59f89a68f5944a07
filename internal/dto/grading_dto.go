package dto

import "time"

// GradeAssignmentRequest triggers a batch grading run. An empty SubmissionIDs
// slice means "all submissions of the assignment".
type GradeAssignmentRequest struct {
	SubmissionIDs []uint `json:"submission_ids"`
}

// BatchStartedResponse acknowledges a detached grading run.
type BatchStartedResponse struct {
	BatchID string `json:"batch_id"`
	Total   int    `json:"total"`
}

// BatchProgressResponse reports a grading run's progress. Attempted advances
// for every processed submission, Completed only for successful ones; a batch
// is finished when Attempted == Total.
type BatchProgressResponse struct {
	BatchID   string `json:"batch_id"`
	Total     int    `json:"total"`
	Attempted int    `json:"attempted"`
	Completed int    `json:"completed"`
}

// InlineCommentResponse is one anchored comment in document order.
type InlineCommentResponse struct {
	CriterionID uint   `json:"criterion_id"`
	QuotedText  string `json:"quoted_text"`
	Comment     string `json:"comment"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
}

// CriterionFeedbackResponse is the section feedback for one rubric criterion.
type CriterionFeedbackResponse struct {
	CriterionID uint     `json:"criterion_id"`
	Strengths   string   `json:"strengths"`
	Growth      string   `json:"growth"`
	Suggestions []string `json:"suggestions"`
}

// OverallFeedbackResponse is the submission-level summary block.
type OverallFeedbackResponse struct {
	Summary    string   `json:"summary"`
	Priorities []string `json:"priorities"`
	NextSteps  []string `json:"next_steps"`
}

// SubmissionFeedbackResponse is the full persisted grading result for one
// submission, as consumed by the UI.
type SubmissionFeedbackResponse struct {
	SubmissionID      uint                        `json:"submission_id"`
	Status            string                      `json:"status"`
	GradedAt          *time.Time                  `json:"graded_at,omitempty"`
	InlineComments    []InlineCommentResponse     `json:"inline_comments"`
	CriterionFeedback []CriterionFeedbackResponse `json:"criterion_feedback"`
	Overall           *OverallFeedbackResponse    `json:"overall,omitempty"`
}
