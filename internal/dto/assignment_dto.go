package dto

import (
	"time"

	"github.com/inkwell-ed/inkwell-api/internal/models"
)

// PerformanceLevelRequest describes one quality tier when creating a rubric.
type PerformanceLevelRequest struct {
	Label       string `json:"label" validate:"required,max=128"`
	Description string `json:"description"`
}

// RubricCriterionRequest describes one rubric criterion when creating an
// assignment. Levels must be supplied highest performance first.
type RubricCriterionRequest struct {
	Name        string                    `json:"name" validate:"required,max=255"`
	Description string                    `json:"description"`
	Levels      []PerformanceLevelRequest `json:"levels" validate:"required,min=1,dive"`
}

// AssignmentCreateRequest is the payload for creating an assignment with its rubric.
type AssignmentCreateRequest struct {
	Title        string                   `json:"title" validate:"required,max=255"`
	Description  string                   `json:"description"`
	Instructions string                   `json:"instructions"`
	DueDate      time.Time                `json:"due_date" validate:"required"`
	Criteria     []RubricCriterionRequest `json:"criteria" validate:"required,min=1,dive"`
}

// PerformanceLevelResponse mirrors a stored performance level.
type PerformanceLevelResponse struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// RubricCriterionResponse mirrors a stored rubric criterion with its ordered levels.
type RubricCriterionResponse struct {
	ID          uint                       `json:"id"`
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Levels      []PerformanceLevelResponse `json:"levels"`
}

// AssignmentResponse is the API view of an assignment.
type AssignmentResponse struct {
	ID           uint                      `json:"id"`
	Title        string                    `json:"title"`
	Description  string                    `json:"description"`
	Instructions string                    `json:"instructions"`
	DueDate      time.Time                 `json:"due_date"`
	Criteria     []RubricCriterionResponse `json:"criteria"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// NewAssignmentResponse maps the model into its API representation,
// preserving criterion and level order.
func NewAssignmentResponse(assignment models.Assignment) AssignmentResponse {
	criteria := make([]RubricCriterionResponse, 0, len(assignment.Criteria))
	for _, criterion := range assignment.Criteria {
		levels := make([]PerformanceLevelResponse, 0, len(criterion.Levels))
		for _, level := range criterion.Levels {
			levels = append(levels, PerformanceLevelResponse{
				Label:       level.Label,
				Description: level.Description,
			})
		}
		criteria = append(criteria, RubricCriterionResponse{
			ID:          criterion.ID,
			Name:        criterion.Name,
			Description: criterion.Description,
			Levels:      levels,
		})
	}

	return AssignmentResponse{
		ID:           assignment.ID,
		Title:        assignment.Title,
		Description:  assignment.Description,
		Instructions: assignment.Instructions,
		DueDate:      assignment.DueDate,
		Criteria:     criteria,
		CreatedAt:    assignment.CreatedAt,
	}
}
