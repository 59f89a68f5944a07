package models

import (
	"time"

	"gorm.io/datatypes"
)

// InlineComment is one anchored comment on a passage of the submission text.
// Only comments whose quoted passage resolved to a character range are
// persisted; unresolved candidates are dropped upstream.
type InlineComment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;index" json:"submission_id"`
	CriterionID  uint      `gorm:"not null" json:"criterion_id"`
	QuotedText   string    `gorm:"type:text" json:"quoted_text"`
	Comment      string    `gorm:"type:text" json:"comment"`
	StartOffset  int       `gorm:"not null" json:"start_offset"`
	EndOffset    int       `gorm:"not null" json:"end_offset"`
	Position     int       `gorm:"not null" json:"position"`
	CreatedAt    time.Time `json:"created_at"`
}

// CriterionFeedback is the section feedback block produced for one rubric
// criterion of a submission.
type CriterionFeedback struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SubmissionID uint           `gorm:"not null;index" json:"submission_id"`
	CriterionID  uint           `gorm:"not null" json:"criterion_id"`
	Strengths    string         `gorm:"type:text" json:"strengths"`
	Growth       string         `gorm:"type:text" json:"growth"`
	Suggestions  datatypes.JSON `json:"suggestions"`
	CreatedAt    time.Time      `json:"created_at"`
}

// OverallFeedback is the single summary block for a submission.
type OverallFeedback struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SubmissionID uint           `gorm:"not null;uniqueIndex" json:"submission_id"`
	Summary      string         `gorm:"type:text" json:"summary"`
	Priorities   datatypes.JSON `json:"priorities"`
	NextSteps    datatypes.JSON `json:"next_steps"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
