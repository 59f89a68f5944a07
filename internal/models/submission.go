package models

import "time"

// Submission is one student's essay for an assignment. ExtractedText is the
// full plain text pulled from the uploaded document by the ingestion layer;
// the grading pipeline treats it as immutable.
type Submission struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;index" json:"assignment_id"`
	StudentID    uint       `gorm:"not null;index" json:"student_id"`
	ExtractedText string    `gorm:"type:text" json:"extracted_text"`
	Status       string     `gorm:"size:32;not null" json:"status"`
	GradedAt     *time.Time `json:"graded_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Assignment   Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student      Student    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// Submission grading lifecycle. A submission moves pending -> processing and
// ends in ready or failed; a regrade resets it to processing.
const (
	SubmissionStatusPending    = "pending"
	SubmissionStatusProcessing = "processing"
	SubmissionStatusReady      = "ready"
	SubmissionStatusFailed     = "failed"
)

// IsGraded reports whether AI feedback has been produced for the submission.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusReady
}
