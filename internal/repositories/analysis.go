package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobbuddy/career-assistant/internal/models"
	"jobbuddy/career-assistant/internal/parser"
)

type AnalysisRepository interface {
	Create(ctx context.Context, analysis *models.Analysis) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.AnalysisStatus) error
	UpdateResult(ctx context.Context, id uuid.UUID, result *AnalysisUpdateData) error
	UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error
	FindPendingJobs(ctx context.Context, limit int) ([]models.Analysis, error)
	ListCompleted(ctx context.Context, limit int) ([]models.Analysis, error)
}

type AnalysisUpdateData struct {
	Result        parser.ResumeAnalysis
	ExtractedText string
	RawResponse   string
	UsedFallback  bool
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Create(ctx context.Context, analysis *models.Analysis) error {
	if err := r.db.WithContext(ctx).Create(analysis).Error; err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	return nil
}

func (r *analysisRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	var analysis models.Analysis
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("analysis %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find analysis: %w", err)
	}
	return &analysis, nil
}

func (r *analysisRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.AnalysisStatus) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})
}

func (r *analysisRepository) UpdateResult(ctx context.Context, id uuid.UUID, data *AnalysisUpdateData) error {
	// Nil scores are written explicitly so a re-run clears stale values.
	return r.update(ctx, id, map[string]interface{}{
		"status":           models.StatusCompleted,
		"strengths":        data.Result.Strengths,
		"ats_score":        data.Result.ATSScore,
		"ats_percentage":   data.Result.ATSPercentage,
		"match_score":      data.Result.MatchScore,
		"match_percentage": data.Result.MatchPercentage,
		"areas_to_improve": data.Result.AreasToImprove,
		"ats_issues":       data.Result.ATSIssues,
		"missing_skills":   data.Result.MissingSkills,
		"extracted_text":   data.ExtractedText,
		"raw_response":     data.RawResponse,
		"used_fallback":    data.UsedFallback,
		"error_message":    nil,
		"updated_at":       time.Now(),
	})
}

func (r *analysisRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": errorMsg,
		"updated_at":    time.Now(),
	})
}

func (r *analysisRepository) update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Analysis{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update analysis: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("analysis %s: %w", id, ErrNotFound)
	}

	return nil
}

func (r *analysisRepository) FindPendingJobs(ctx context.Context, limit int) ([]models.Analysis, error) {
	var analyses []models.Analysis
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&analyses).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return analyses, nil
}

func (r *analysisRepository) ListCompleted(ctx context.Context, limit int) ([]models.Analysis, error) {
	var analyses []models.Analysis
	err := r.db.WithContext(ctx).
		Preload("Document").
		Where("status = ?", models.StatusCompleted).
		Order("created_at DESC").
		Limit(limit).
		Find(&analyses).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	return analyses, nil
}
