package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"jobbuddy/career-assistant/internal/models"
	"jobbuddy/career-assistant/internal/parser"
	"jobbuddy/career-assistant/internal/repositories"
)

type AnalyzerService interface {
	AnalyzeResume(ctx context.Context, analysisID uuid.UUID) error
}

type AnalyzerOptions struct {
	MaxRetries          int
	ResumeTextLimit     int
	JobDescriptionLimit int
}

type analyzerService struct {
	analysisRepo   repositories.AnalysisRepository
	docRepo        repositories.DocumentRepository
	storageService StorageService
	extractor      TextExtractor
	geminiService  GeminiService
	knowledge      KnowledgeBase
	publisher      EventPublisher
	promptBuilder  *PromptBuilder
	opts           AnalyzerOptions
}

func NewAnalyzerService(
	analysisRepo repositories.AnalysisRepository,
	docRepo repositories.DocumentRepository,
	storageService StorageService,
	extractor TextExtractor,
	geminiService GeminiService,
	knowledge KnowledgeBase,
	publisher EventPublisher,
	opts AnalyzerOptions,
) AnalyzerService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &analyzerService{
		analysisRepo:   analysisRepo,
		docRepo:        docRepo,
		storageService: storageService,
		extractor:      extractor,
		geminiService:  geminiService,
		knowledge:      knowledge,
		publisher:      publisher,
		promptBuilder:  NewPromptBuilder(),
		opts:           opts,
	}
}

func (a *analyzerService) AnalyzeResume(ctx context.Context, analysisID uuid.UUID) error {
	if err := a.analysisRepo.UpdateStatus(ctx, analysisID, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	publishStatus(ctx, a.publisher, analysisID.String(), string(models.StatusProcessing), "")

	log.Printf("🔄 Starting resume analysis for job ID: %s\n", analysisID)

	analysis, err := a.analysisRepo.FindByID(ctx, analysisID)
	if err != nil {
		return a.fail(ctx, analysisID, "Analysis not found", err)
	}

	doc, err := a.docRepo.FindByID(ctx, analysis.DocumentID)
	if err != nil {
		return a.fail(ctx, analysisID, "Resume document not found", err)
	}

	// Step 1: Extract text
	log.Println("📄 Extracting resume text...")
	resumeText, err := a.extractText(ctx, doc)
	if err != nil {
		return a.fail(ctx, analysisID, "Failed to extract resume text", err)
	}

	resumeText = truncateRunes(strings.ToValidUTF8(resumeText, ""), a.opts.ResumeTextLimit)
	jobDescription := truncateRunes(strings.ToValidUTF8(strings.TrimSpace(analysis.JobDescription), ""), a.opts.JobDescriptionLimit)

	// Step 2: Ground the prompt in the ATS guide
	guidelines := retrieveOrEmpty(ctx, a.knowledge, a.promptBuilder.BuildRetrievalQuery(DocTypeATSGuide, ""), DocTypeATSGuide, 3)

	// Step 3: Ask the model
	log.Println("🤖 Analyzing resume with LLM...")
	prompt := a.promptBuilder.BuildResumeAnalysisPrompt(resumeText, jobDescription, guidelines)
	response, err := a.geminiService.GenerateTextWithRetry(ctx, prompt, 0.3, a.opts.MaxRetries)
	usedFallback := false
	if err != nil {
		if ctx.Err() != nil {
			return a.fail(ctx, analysisID, "Analysis cancelled", err)
		}
		log.Printf("⚠️  LLM analysis failed, using heuristic analysis: %v\n", err)
		response = a.promptBuilder.BuildHeuristicAnalysis(resumeText)
		usedFallback = true
	}

	// Step 4: Parse
	result, err := parser.ParseResume(strings.ToValidUTF8(response, ""), jobDescription != "")
	if err != nil {
		return a.fail(ctx, analysisID, "Failed to parse analysis", err)
	}

	// Step 5: Save
	log.Println("💾 Saving analysis results...")
	updateData := &repositories.AnalysisUpdateData{
		Result:        result,
		ExtractedText: resumeText,
		RawResponse:   response,
		UsedFallback:  usedFallback,
	}
	if err := a.analysisRepo.UpdateResult(ctx, analysisID, updateData); err != nil {
		return a.fail(ctx, analysisID, "Failed to save analysis results", err)
	}
	publishStatus(ctx, a.publisher, analysisID.String(), string(models.StatusCompleted), "")

	log.Printf("✅ Resume analysis completed for job ID: %s\n", analysisID)
	return nil
}

func (a *analyzerService) extractText(ctx context.Context, doc *models.Document) (string, error) {
	path, cleanup, err := a.storageService.Fetch(ctx, doc.Filename)
	if err != nil {
		return "", err
	}
	defer cleanup()

	text, err := a.extractor.Extract(ctx, path, doc.ContentType)
	if err != nil {
		return "", err
	}
	return CleanText(text), nil
}

func (a *analyzerService) fail(ctx context.Context, id uuid.UUID, msg string, cause error) error {
	errMsg := fmt.Sprintf("%s: %v", msg, cause)
	if errors.Is(cause, ErrUnsupportedFormat) {
		errMsg = fmt.Sprintf("%s: unsupported file format", msg)
	}

	if err := a.analysisRepo.UpdateError(context.WithoutCancel(ctx), id, errMsg); err != nil {
		log.Printf("❌ Failed to record error for %s: %v\n", id, err)
	}
	publishStatus(ctx, a.publisher, id.String(), string(models.StatusFailed), errMsg)

	return fmt.Errorf("%s: %w", strings.ToLower(msg), cause)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
