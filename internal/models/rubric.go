package models

import "time"

// RubricCriterion is one named dimension of evaluation within an assignment's
// rubric, e.g. "Thesis Statement". Its performance levels are ordered from
// highest to lowest quality; Position preserves that order.
type RubricCriterion struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	AssignmentID uint               `gorm:"not null;index" json:"assignment_id"`
	Name         string             `gorm:"size:255;not null" json:"name"`
	Description  string             `gorm:"type:text" json:"description"`
	Position     int                `gorm:"not null" json:"position"`
	Levels       []PerformanceLevel `gorm:"foreignKey:CriterionID;constraint:OnDelete:CASCADE" json:"levels"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// PerformanceLevel is one tier of quality within a criterion. It has no
// identity beyond its position in the criterion's ordered sequence.
type PerformanceLevel struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CriterionID uint   `gorm:"not null;index" json:"criterion_id"`
	Label       string `gorm:"size:128;not null" json:"label"`
	Description string `gorm:"type:text" json:"description"`
	Position    int    `gorm:"not null" json:"position"`
}
