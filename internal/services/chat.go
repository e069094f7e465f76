package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobbuddy/career-assistant/internal/models"
	"jobbuddy/career-assistant/internal/repositories"
)

var ErrEmptyMessage = errors.New("message cannot be empty")

const DefaultUserID = "default"

type ChatService interface {
	Send(ctx context.Context, userID, message string) (string, error)
	Reset(ctx context.Context, userID string) error
}

type chatService struct {
	chatRepo      repositories.ChatRepository
	sessions      SessionStore
	geminiService GeminiService
	knowledge     KnowledgeBase
	promptBuilder *PromptBuilder
	historyWindow int
	// userLocks holds one *sync.Mutex per user so turns are recorded in order.
	userLocks sync.Map
}

func NewChatService(
	chatRepo repositories.ChatRepository,
	sessions SessionStore,
	geminiService GeminiService,
	knowledge KnowledgeBase,
	historyWindow int,
) ChatService {
	if historyWindow < 0 {
		historyWindow = 0
	}
	return &chatService{
		chatRepo:      chatRepo,
		sessions:      sessions,
		geminiService: geminiService,
		knowledge:     knowledge,
		promptBuilder: NewPromptBuilder(),
		historyWindow: historyWindow,
	}
}

func (s *chatService) Send(ctx context.Context, userID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}
	userID = normalizeUserID(userID)

	unlock := s.lockUser(userID)
	defer unlock()

	session, err := s.loadSession(ctx, userID)
	if err != nil {
		return "", err
	}

	knowledge := retrieveOrEmpty(ctx, s.knowledge, message, DocTypeCareerGuide, 2)

	prompt := message
	if chatContext := s.promptBuilder.BuildChatContext(lastTurns(session.History, s.historyWindow), knowledge); chatContext != "" {
		prompt = chatContext + "\n\n" + message
	}

	sentAt := time.Now()
	log.Printf("💬 Sending message for user %s (%d prior messages)\n", userID, len(session.History))
	reply, err := s.geminiService.GenerateChat(ctx, ChatSystemPrompt, []ChatTurn{{Role: RoleUser, Content: prompt}})
	if err != nil {
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}

	err = s.chatRepo.Append(ctx,
		&models.ChatMessage{ID: uuid.New(), UserID: userID, Role: RoleUser, Content: message, CreatedAt: sentAt},
		&models.ChatMessage{ID: uuid.New(), UserID: userID, Role: RoleModel, Content: reply, CreatedAt: time.Now()},
	)
	if err != nil {
		log.Printf("⚠️  Failed to persist chat history for %s: %v\n", userID, err)
	}

	session.History = append(session.History,
		ChatTurn{Role: RoleUser, Content: message},
		ChatTurn{Role: RoleModel, Content: reply},
	)
	session.History = lastTurns(session.History, s.historyWindow)
	s.sessions.Put(session)

	return reply, nil
}

func (s *chatService) Reset(ctx context.Context, userID string) error {
	userID = normalizeUserID(userID)

	unlock := s.lockUser(userID)
	defer unlock()

	s.sessions.Delete(userID)

	if err := s.chatRepo.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to reset conversation: %w", err)
	}
	return nil
}

func (s *chatService) lockUser(userID string) func() {
	mu, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// loadSession returns the cached session or rebuilds it from stored history.
func (s *chatService) loadSession(ctx context.Context, userID string) (*ChatSession, error) {
	if session, ok := s.sessions.Get(userID); ok {
		return session, nil
	}

	session := &ChatSession{UserID: userID}
	if s.historyWindow == 0 {
		return session, nil
	}

	messages, err := s.chatRepo.FindRecentByUser(ctx, userID, s.historyWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	for _, m := range messages {
		session.History = append(session.History, ChatTurn{Role: m.Role, Content: m.Content})
	}

	return session, nil
}

func lastTurns(history []ChatTurn, n int) []ChatTurn {
	if n <= 0 {
		return nil
	}
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

func normalizeUserID(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return DefaultUserID
	}
	return userID
}
