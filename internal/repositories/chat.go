package repositories

import (
	"context"
	"fmt"
	"slices"

	"gorm.io/gorm"

	"jobbuddy/career-assistant/internal/models"
)

type ChatRepository interface {
	Append(ctx context.Context, messages ...*models.ChatMessage) error
	// FindRecentByUser returns the last limit messages, oldest first.
	FindRecentByUser(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Append(ctx context.Context, messages ...*models.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(messages).Error; err != nil {
		return fmt.Errorf("failed to save chat messages: %w", err)
	}
	return nil
}

func (r *chatRepository) FindRecentByUser(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find chat messages: %w", err)
	}

	slices.Reverse(messages)
	return messages, nil
}

func (r *chatRepository) DeleteByUser(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.ChatMessage{}).Error; err != nil {
		return fmt.Errorf("failed to delete chat messages: %w", err)
	}
	return nil
}
