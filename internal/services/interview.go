package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobbuddy/career-assistant/internal/models"
	"jobbuddy/career-assistant/internal/parser"
	"jobbuddy/career-assistant/internal/repositories"
)

var (
	ErrEmptyAnswer     = errors.New("answer is empty")
	ErrInvalidQuestion = errors.New("question does not exist")
)

const (
	DefaultJobRole       = "professional"
	DefaultPositionLevel = "mid-level"
	DefaultQuestionCount = 3
	MaxQuestionCount     = 10

	defaultFeedbackSummary = "I've analyzed your answer and provided detailed feedback."
	specificFeedbackMarker = "Specific Feedback:"
)

// AllowedAudioTypes are the recordings accepted for spoken answers.
var AllowedAudioTypes = map[string]bool{
	"audio/wav":   true,
	"audio/x-wav": true,
	"audio/webm":  true,
	"audio/mpeg":  true,
	"audio/mp3":   true,
}

type StartInterviewInput struct {
	JobRole       string
	InterviewType string
	PositionLevel string
	NumQuestions  int
}

type AnswerInput struct {
	QuestionIndex int
	IsFollowUp    bool
	FollowUpIndex int
	Text          string
	Audio         []byte
	AudioMimeType string
}

type InterviewService interface {
	Start(ctx context.Context, in StartInterviewInput) (*models.Interview, error)
	SubmitAnswer(ctx context.Context, interviewID uuid.UUID, in AnswerInput) (*models.AnswerResponse, error)
	Summarize(ctx context.Context, interviewID uuid.UUID) (*models.SummaryResponse, error)
	Get(ctx context.Context, interviewID uuid.UUID) (*models.Interview, error)
}

type interviewService struct {
	interviewRepo repositories.InterviewRepository
	geminiService GeminiService
	knowledge     KnowledgeBase
	promptBuilder *PromptBuilder
	maxRetries    int
}

func NewInterviewService(
	interviewRepo repositories.InterviewRepository,
	geminiService GeminiService,
	knowledge KnowledgeBase,
	maxRetries int,
) InterviewService {
	return &interviewService{
		interviewRepo: interviewRepo,
		geminiService: geminiService,
		knowledge:     knowledge,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
	}
}

func (s *interviewService) Start(ctx context.Context, in StartInterviewInput) (*models.Interview, error) {
	jobRole := orDefault(in.JobRole, DefaultJobRole)
	level := orDefault(in.PositionLevel, DefaultPositionLevel)
	interviewType := models.ParseInterviewType(in.InterviewType)

	count := in.NumQuestions
	if count <= 0 {
		count = DefaultQuestionCount
	}
	count = min(count, MaxQuestionCount)

	prompt := s.promptBuilder.BuildQuestionPrompt(interviewType, jobRole, level, count)
	if guide := retrieveOrEmpty(ctx, s.knowledge, s.promptBuilder.BuildRetrievalQuery(DocTypeInterviewGuide, jobRole), DocTypeInterviewGuide, 2); guide != "" {
		prompt += "\n\nUse this interview guidance where relevant:\n" + guide
	}

	log.Printf("🎤 Generating %d %s questions for %s %s\n", count, interviewType, level, jobRole)
	response, err := s.geminiService.GenerateTextWithRetry(ctx, prompt, 0.7, s.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	interview := &models.Interview{
		ID:            uuid.New(),
		JobRole:       jobRole,
		InterviewType: interviewType,
		PositionLevel: level,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	for i, text := range cleanQuestions(response, jobRole, count) {
		interview.Questions = append(interview.Questions, models.InterviewQuestion{
			ID:          uuid.New(),
			InterviewID: interview.ID,
			Position:    i,
			Text:        text,
		})
	}

	if err := s.interviewRepo.Create(ctx, interview); err != nil {
		return nil, err
	}

	return interview, nil
}

func (s *interviewService) SubmitAnswer(ctx context.Context, interviewID uuid.UUID, in AnswerInput) (*models.AnswerResponse, error) {
	interview, err := s.interviewRepo.FindByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	if in.QuestionIndex < 0 || in.QuestionIndex >= len(interview.Questions) {
		return nil, fmt.Errorf("%w: index %d", ErrInvalidQuestion, in.QuestionIndex)
	}
	question := &interview.Questions[in.QuestionIndex]

	answer, err := s.resolveAnswer(ctx, in)
	if err != nil {
		return nil, err
	}

	if in.IsFollowUp {
		return s.answerFollowUp(ctx, interview, question, in.FollowUpIndex, answer)
	}
	return s.answerQuestion(ctx, interview, question, answer)
}

func (s *interviewService) answerQuestion(ctx context.Context, interview *models.Interview, q *models.InterviewQuestion, answer string) (*models.AnswerResponse, error) {
	analysisPrompt := s.promptBuilder.BuildAnswerAnalysisPrompt(interview.InterviewType, interview.JobRole, interview.PositionLevel, q.Text, answer)
	analysis, err := s.geminiService.GenerateTextWithRetry(ctx, analysisPrompt, 0.4, s.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze answer: %w", err)
	}
	analysis = stripMarkdown(analysis)

	ratings, err := parser.ParseAnswerRatings(strings.ToValidUTF8(analysis, ""))
	if err != nil {
		log.Printf("⚠️  Failed to read ratings from feedback: %v\n", err)
	}

	q.Answer = answer
	q.Feedback = analysis
	q.FeedbackSummary = feedbackSummary(analysis)
	q.ContentQuality = ratings.ContentQuality
	q.Relevance = ratings.Relevance
	q.Completeness = ratings.Completeness
	if err := s.interviewRepo.UpdateQuestion(ctx, q); err != nil {
		return nil, err
	}

	resp := &models.AnswerResponse{
		Transcription:   answer,
		Feedback:        analysis,
		FeedbackSummary: q.FeedbackSummary,
		Ratings:         ratings,
	}

	followUpPrompt := s.promptBuilder.BuildFollowUpPrompt(interview.InterviewType, interview.JobRole, interview.PositionLevel, q.Text, answer)
	followUpText, err := s.geminiService.GenerateText(ctx, followUpPrompt, 0.7)
	if err != nil {
		log.Printf("⚠️  Failed to generate follow-up question: %v\n", err)
		return resp, nil
	}

	followUp := &models.InterviewFollowUp{
		ID:         uuid.New(),
		QuestionID: q.ID,
		Position:   len(q.FollowUps),
		Text:       stripMarkdown(strings.TrimSpace(followUpText)),
	}
	if err := s.interviewRepo.AddFollowUp(ctx, followUp); err != nil {
		return nil, err
	}
	resp.FollowUpQuestions = []string{followUp.Text}

	return resp, nil
}

func (s *interviewService) answerFollowUp(ctx context.Context, interview *models.Interview, q *models.InterviewQuestion, index int, answer string) (*models.AnswerResponse, error) {
	if index < 0 || index >= len(q.FollowUps) {
		return nil, fmt.Errorf("%w: follow-up %d of question %d", ErrInvalidQuestion, index, q.Position)
	}
	followUp := &q.FollowUps[index]

	prompt := s.promptBuilder.BuildBriefFeedbackPrompt(interview.InterviewType, followUp.Text, answer)
	feedback, err := s.geminiService.GenerateTextWithRetry(ctx, prompt, 0.4, s.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to give follow-up feedback: %w", err)
	}
	feedback = stripMarkdown(strings.TrimSpace(feedback))

	followUp.Answer = answer
	followUp.Feedback = feedback
	if err := s.interviewRepo.UpdateFollowUp(ctx, followUp); err != nil {
		return nil, err
	}

	return &models.AnswerResponse{
		Transcription:   answer,
		Feedback:        feedback,
		FeedbackSummary: feedback,
	}, nil
}

// resolveAnswer returns the typed answer or transcribes the recording.
func (s *interviewService) resolveAnswer(ctx context.Context, in AnswerInput) (string, error) {
	if len(in.Audio) > 0 {
		mimeType := normalizeAudioType(in.AudioMimeType)
		if !AllowedAudioTypes[mimeType] {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, in.AudioMimeType)
		}

		text, err := s.geminiService.GenerateFromMedia(ctx, s.promptBuilder.BuildTranscriptionPrompt(), in.Audio, mimeType)
		if err != nil {
			return "", fmt.Errorf("failed to transcribe answer: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("%w: could not understand audio", ErrEmptyAnswer)
		}
		return strings.TrimSpace(text), nil
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return "", ErrEmptyAnswer
	}
	return text, nil
}

func (s *interviewService) Summarize(ctx context.Context, interviewID uuid.UUID) (*models.SummaryResponse, error) {
	interview, err := s.interviewRepo.FindByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	summary, err := s.geminiService.GenerateTextWithRetry(ctx, s.promptBuilder.BuildInterviewSummaryPrompt(interview), 0.5, s.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}
	summary = stripMarkdown(strings.TrimSpace(summary))

	condensed, err := s.geminiService.GenerateText(ctx, s.promptBuilder.BuildCondensedSummaryPrompt(summary), 0.5)
	if err != nil {
		log.Printf("⚠️  Failed to condense summary: %v\n", err)
		condensed = ""
	}
	condensed = stripMarkdown(strings.TrimSpace(condensed))

	if err := s.interviewRepo.UpdateSummary(ctx, interviewID, summary, condensed); err != nil {
		return nil, err
	}

	return &models.SummaryResponse{Summary: summary, CondensedSummary: condensed}, nil
}

func (s *interviewService) Get(ctx context.Context, interviewID uuid.UUID) (*models.Interview, error) {
	return s.interviewRepo.FindByID(ctx, interviewID)
}

var (
	questionPrefix = regexp.MustCompile(`(?i)^(?:[-•]\s*)?(?:question\s*\d+\s*[:.)-]?|question\s*:|\d+[.):]\s)?\s*`)
	numberedLine   = regexp.MustCompile(`(?m)^\s*\d+\.\s`)
)

// cleanQuestions strips numbering from generated questions and pads the
// list to count with a generic question about the role.
func cleanQuestions(response, jobRole string, count int) []string {
	questions := make([]string, 0, count)
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(stripMarkdown(line))
		line = strings.TrimSpace(questionPrefix.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		questions = append(questions, line)
		if len(questions) == count {
			return questions
		}
	}

	for len(questions) < count {
		questions = append(questions, fmt.Sprintf("Can you tell me about your experience as a %s?", jobRole))
	}
	return questions
}

// feedbackSummary returns the spoken summary of an answer analysis: the
// "Specific Feedback:" item up to the next numbered item.
func feedbackSummary(analysis string) string {
	_, after, found := strings.Cut(analysis, specificFeedbackMarker)
	if !found {
		return defaultFeedbackSummary
	}

	if loc := numberedLine.FindStringIndex(after); loc != nil {
		after = after[:loc[0]]
	}
	after = strings.TrimSpace(after)
	if after == "" {
		return defaultFeedbackSummary
	}

	return "Here's my feedback on your answer. " + after
}

func stripMarkdown(s string) string {
	return strings.ReplaceAll(s, "*", "")
}

func normalizeAudioType(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
