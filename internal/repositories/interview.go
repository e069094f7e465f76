package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobbuddy/career-assistant/internal/models"
)

type InterviewRepository interface {
	Create(ctx context.Context, interview *models.Interview) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Interview, error)
	UpdateQuestion(ctx context.Context, question *models.InterviewQuestion) error
	AddFollowUp(ctx context.Context, followUp *models.InterviewFollowUp) error
	UpdateFollowUp(ctx context.Context, followUp *models.InterviewFollowUp) error
	UpdateSummary(ctx context.Context, id uuid.UUID, summary, condensed string) error
}

type interviewRepository struct {
	db *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

// Create stores the interview together with its questions.
func (r *interviewRepository) Create(ctx context.Context, interview *models.Interview) error {
	if err := r.db.WithContext(ctx).Create(interview).Error; err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}
	return nil
}

func (r *interviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Interview, error) {
	var interview models.Interview
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Questions.FollowUps", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&interview).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("interview %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find interview: %w", err)
	}
	return &interview, nil
}

func (r *interviewRepository) UpdateQuestion(ctx context.Context, q *models.InterviewQuestion) error {
	result := r.db.WithContext(ctx).Model(&models.InterviewQuestion{}).
		Where("id = ?", q.ID).
		Updates(map[string]interface{}{
			"answer":           q.Answer,
			"feedback":         q.Feedback,
			"feedback_summary": q.FeedbackSummary,
			"content_quality":  q.ContentQuality,
			"relevance":        q.Relevance,
			"completeness":     q.Completeness,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("question %s: %w", q.ID, ErrNotFound)
	}
	return nil
}

func (r *interviewRepository) AddFollowUp(ctx context.Context, f *models.InterviewFollowUp) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("failed to add follow-up: %w", err)
	}
	return nil
}

func (r *interviewRepository) UpdateFollowUp(ctx context.Context, f *models.InterviewFollowUp) error {
	result := r.db.WithContext(ctx).Model(&models.InterviewFollowUp{}).
		Where("id = ?", f.ID).
		Updates(map[string]interface{}{
			"answer":   f.Answer,
			"feedback": f.Feedback,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update follow-up: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("follow-up %s: %w", f.ID, ErrNotFound)
	}
	return nil
}

func (r *interviewRepository) UpdateSummary(ctx context.Context, id uuid.UUID, summary, condensed string) error {
	result := r.db.WithContext(ctx).Model(&models.Interview{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"summary":           summary,
			"condensed_summary": condensed,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update summary: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("interview %s: %w", id, ErrNotFound)
	}
	return nil
}
