package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"

	"jobbuddy/career-assistant/internal/config"
)

// ErrService marks failures of the upstream model service.
var ErrService = errors.New("ai service error")

// ChatTurn is one message of a conversation sent to the model.
type ChatTurn struct {
	Role    string
	Content string
}

const (
	RoleUser  = "user"
	RoleModel = "model"
)

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error)
	GenerateFromMedia(ctx context.Context, prompt string, data []byte, mimeType string) (string, error)
	GenerateChat(ctx context.Context, systemPrompt string, history []ChatTurn) (string, error)
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
	retryDelay time.Duration
}

func NewGeminiService(cfg config.GeminiConfig, retryDelay time.Duration) (GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		modelName:  cfg.Model,
		embedModel: cfg.EmbedModel,
		retryDelay: retryDelay,
	}, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate text if too long (max ~10000 tokens for embedding)
	if len(text) > 40000 {
		text = strings.ToValidUTF8(text[:40000], "")
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate embedding: %v", ErrService, err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: empty embedding result", ErrService)
	}

	return result.Embeddings[0].Values, nil
}

// GenerateText implements GeminiService.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		log.Printf("❌ Gemini API error: %v", err)
		return "", fmt.Errorf("%w: failed to generate text: %v", ErrService, err)
	}

	return responseText(resp)
}

// GenerateTextWithRetry implements GeminiService.
func (g *geminiService) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := g.GenerateText(ctx, prompt, temperature)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == maxRetries {
			break
		}

		log.Printf("⚠️ Attempt %d failed: %v. Retrying...", attempt, err)
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(g.retryDelay * time.Duration(attempt)):
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

// GenerateFromMedia implements GeminiService. It is used for OCR of résumé
// images and transcription of recorded interview answers.
func (g *geminiService) GenerateFromMedia(ctx context.Context, prompt string, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty %s payload", mimeType)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(data, mimeType),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, nil)
	if err != nil {
		log.Printf("❌ Gemini media request failed: %v", err)
		return "", fmt.Errorf("%w: failed to process %s: %v", ErrService, mimeType, err)
	}

	return responseText(resp)
}

// GenerateChat implements GeminiService.
func (g *geminiService) GenerateChat(ctx context.Context, systemPrompt string, history []ChatTurn) (string, error) {
	if len(history) == 0 {
		return "", fmt.Errorf("empty chat history")
	}

	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := genai.Role(genai.RoleUser)
		if turn.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}

	temperature := float32(0.7)
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 2048,
	}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, config)
	if err != nil {
		log.Printf("❌ Gemini chat error: %v", err)
		return "", fmt.Errorf("%w: failed to generate chat reply: %v", ErrService, err)
	}

	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: no response generated (nil response)", ErrService)
	}

	text := resp.Text()
	if text == "" {
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
			return "", fmt.Errorf("%w: no text content in response (finish reason %s)", ErrService, resp.Candidates[0].FinishReason)
		}
		return "", fmt.Errorf("%w: no text content in response", ErrService)
	}

	return text, nil
}
