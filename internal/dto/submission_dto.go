package dto

import (
	"time"

	"github.com/inkwell-ed/inkwell-api/internal/models"
)

// SubmissionCreateRequest registers one student's extracted essay text for an
// assignment. Text extraction from the uploaded document happens upstream.
type SubmissionCreateRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required"`
	StudentID    uint   `json:"student_id" validate:"required"`
	Text         string `json:"text" validate:"required"`
}

// SubmissionFilter narrows submission list queries.
type SubmissionFilter struct {
	AssignmentID *uint
	StudentID    *uint
	Status       *string
}

// SubmissionResponse is the API view of a submission.
type SubmissionResponse struct {
	ID           uint       `json:"id"`
	AssignmentID uint       `json:"assignment_id"`
	StudentID    uint       `json:"student_id"`
	Status       string     `json:"status"`
	GradedAt     *time.Time `json:"graded_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewSubmissionResponse maps the model into its API representation.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           submission.ID,
		AssignmentID: submission.AssignmentID,
		StudentID:    submission.StudentID,
		Status:       submission.Status,
		GradedAt:     submission.GradedAt,
		CreatedAt:    submission.CreatedAt,
	}
}

// StudentCreateRequest registers a student.
type StudentCreateRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email"`
}
