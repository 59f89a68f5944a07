package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/inkwell-ed/inkwell-api/internal/dto"
	"github.com/inkwell-ed/inkwell-api/internal/models"
	"github.com/inkwell-ed/inkwell-api/internal/repository"
)

// ErrAssignmentNotFound indicates the assignment was not located.
var ErrAssignmentNotFound = errors.New("assignment not found")

// AssignmentService exposes assignment and rubric operations.
type AssignmentService interface {
	Create(ctx context.Context, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	List(ctx context.Context) ([]dto.AssignmentResponse, error)
}

type assignmentService struct {
	repo      repository.AssignmentRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(repo repository.AssignmentRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		Title:        payload.Title,
		Description:  payload.Description,
		Instructions: payload.Instructions,
		DueDate:      payload.DueDate,
		Criteria:     make([]models.RubricCriterion, 0, len(payload.Criteria)),
	}

	// Request order is semantic: criteria in rubric order, levels from
	// highest to lowest performance. Position freezes both.
	for i, criterion := range payload.Criteria {
		levels := make([]models.PerformanceLevel, 0, len(criterion.Levels))
		for j, level := range criterion.Levels {
			levels = append(levels, models.PerformanceLevel{
				Label:       level.Label,
				Description: level.Description,
				Position:    j,
			})
		}
		assignment.Criteria = append(assignment.Criteria, models.RubricCriterion{
			Name:        criterion.Name,
			Description: criterion.Description,
			Position:    i,
			Levels:      levels,
		})
	}

	if err := s.repo.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Int("criteria", len(assignment.Criteria)).Msg("assignment created")
	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) List(ctx context.Context) ([]dto.AssignmentResponse, error) {
	assignments, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, dto.NewAssignmentResponse(assignment))
	}

	return responses, nil
}
