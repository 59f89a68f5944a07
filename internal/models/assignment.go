package models

import "time"

// Assignment is one essay prompt a teacher hands out, together with the
// rubric it is graded against.
type Assignment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	// Instructions holds optional free-text grading guidance from the
	// teacher, included verbatim in every grading prompt.
	Instructions string            `gorm:"type:text" json:"instructions"`
	DueDate      time.Time         `json:"due_date"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Criteria     []RubricCriterion `gorm:"constraint:OnDelete:CASCADE" json:"criteria"`
	Submissions  []Submission      `json:"-"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}
