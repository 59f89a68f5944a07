package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/inkwell-ed/inkwell-api/internal/dto"
	"github.com/inkwell-ed/inkwell-api/internal/models"
	"github.com/inkwell-ed/inkwell-api/internal/repository"
)

// StudentService exposes student roster operations.
type StudentService interface {
	Create(ctx context.Context, payload dto.StudentCreateRequest) (models.Student, error)
	List(ctx context.Context) ([]models.Student, error)
}

type studentService struct {
	repo      repository.StudentRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo repository.StudentRepository, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Create(ctx context.Context, payload dto.StudentCreateRequest) (models.Student, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Student{}, err
	}

	student := models.Student{Name: payload.Name, Email: payload.Email}
	if err := s.repo.Create(ctx, &student); err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (s *studentService) List(ctx context.Context) ([]models.Student, error) {
	return s.repo.List(ctx)
}
