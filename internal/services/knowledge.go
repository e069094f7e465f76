package services

import (
	"context"
	"fmt"
	"log"
)

// KnowledgeBase retrieves career guidance snippets used to ground prompts.
type KnowledgeBase interface {
	Retrieve(ctx context.Context, query string, docType string, limit int) (string, error)
}

type knowledgeBase struct {
	geminiService GeminiService
	qdrantService QdrantService
}

func NewKnowledgeBase(geminiService GeminiService, qdrantService QdrantService) KnowledgeBase {
	if qdrantService == nil {
		return noopKnowledgeBase{}
	}
	return &knowledgeBase{
		geminiService: geminiService,
		qdrantService: qdrantService,
	}
}

func (k *knowledgeBase) Retrieve(ctx context.Context, query string, docType string, limit int) (string, error) {
	embedding, err := k.geminiService.GenerateEmbedding(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to generate query embedding: %w", err)
	}

	results, err := k.qdrantService.SearchSimilar(ctx, embedding, docType, limit)
	if err != nil {
		return "", fmt.Errorf("failed to search %s: %w", docType, err)
	}

	return FormatRAGContext(results), nil
}

type noopKnowledgeBase struct{}

func (noopKnowledgeBase) Retrieve(context.Context, string, string, int) (string, error) {
	return "", nil
}

// retrieveOrEmpty degrades any retrieval failure to an empty context.
func retrieveOrEmpty(ctx context.Context, kb KnowledgeBase, query, docType string, limit int) string {
	if kb == nil {
		return ""
	}
	snippets, err := kb.Retrieve(ctx, query, docType, limit)
	if err != nil {
		log.Printf("⚠️  Warning: failed to retrieve %s context: %v\n", docType, err)
		return ""
	}
	return snippets
}
