package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/inkwell-ed/inkwell-api/internal/models"
)

// SubmissionFeedback aggregates every persisted feedback artefact for one submission.
type SubmissionFeedback struct {
	InlineComments    []models.InlineComment
	CriterionFeedback []models.CriterionFeedback
	Overall           *models.OverallFeedback
}

// FeedbackRepository persists AI grading results. Replace semantics keep a
// regrade from stacking duplicate comments on top of the previous pass.
type FeedbackRepository interface {
	ReplaceInlineComments(ctx context.Context, submissionID uint, comments []models.InlineComment) error
	ReplaceCriterionFeedback(ctx context.Context, submissionID uint, feedback []models.CriterionFeedback) error
	UpsertOverallFeedback(ctx context.Context, feedback *models.OverallFeedback) error
	GetBySubmission(ctx context.Context, submissionID uint) (SubmissionFeedback, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository instantiates the repository.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) ReplaceInlineComments(ctx context.Context, submissionID uint, comments []models.InlineComment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", submissionID).Delete(&models.InlineComment{}).Error; err != nil {
			return err
		}
		if len(comments) == 0 {
			return nil
		}
		return tx.Create(&comments).Error
	})
}

func (r *feedbackRepository) ReplaceCriterionFeedback(ctx context.Context, submissionID uint, feedback []models.CriterionFeedback) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", submissionID).Delete(&models.CriterionFeedback{}).Error; err != nil {
			return err
		}
		if len(feedback) == 0 {
			return nil
		}
		return tx.Create(&feedback).Error
	})
}

func (r *feedbackRepository) UpsertOverallFeedback(ctx context.Context, feedback *models.OverallFeedback) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", feedback.SubmissionID).Delete(&models.OverallFeedback{}).Error; err != nil {
			return err
		}
		return tx.Create(feedback).Error
	})
}

func (r *feedbackRepository) GetBySubmission(ctx context.Context, submissionID uint) (SubmissionFeedback, error) {
	var result SubmissionFeedback

	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("position ASC").
		Find(&result.InlineComments).Error
	if err != nil {
		return SubmissionFeedback{}, err
	}

	err = r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("criterion_id ASC").
		Find(&result.CriterionFeedback).Error
	if err != nil {
		return SubmissionFeedback{}, err
	}

	var overall models.OverallFeedback
	err = r.db.WithContext(ctx).Where("submission_id = ?", submissionID).First(&overall).Error
	switch {
	case err == nil:
		result.Overall = &overall
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return SubmissionFeedback{}, err
	}

	return result, nil
}
