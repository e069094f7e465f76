package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jobbuddy/career-assistant/internal/models"
	"jobbuddy/career-assistant/internal/repositories"
)

const sampleAnswerFeedback = `1. **Content Quality (0-10): 8** Clear situation and actions.
2. Relevance to Question (0-10): 7
3. Completeness (0-10): 6.5 The result was missing.
4. Sentiment Analysis: Confident.
5. Strengths: Good structure.
6. Areas for Improvement: Quantify results.
7. Specific Feedback: Mention the outcome and what you learned.
8. Overall Impression: Solid.`

func startTestInterview(t *testing.T) (InterviewService, *MockGemini, *models.Interview) {
	t.Helper()
	gemini := new(MockGemini)
	svc := NewInterviewService(newFakeInterviewRepo(), gemini, staticKnowledge{}, 2)

	gemini.On("GenerateTextWithRetry", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "behavioral interview questions for a mid-level nurse role")
	}), float32(0.7), 2).Return("1. Tell me about a stressful shift.\n2. Describe a conflict with a doctor.", nil).Once()

	interview, err := svc.Start(context.Background(), StartInterviewInput{
		JobRole:       "nurse",
		InterviewType: "behavioral",
		NumQuestions:  2,
	})
	require.NoError(t, err)
	return svc, gemini, interview
}

func TestInterviewService_Start(t *testing.T) {
	_, gemini, interview := startTestInterview(t)

	assert.Equal(t, models.InterviewBehavioral, interview.InterviewType)
	assert.Equal(t, DefaultPositionLevel, interview.PositionLevel)
	require.Len(t, interview.Questions, 2)
	assert.Equal(t, "Tell me about a stressful shift.", interview.Questions[0].Text)
	assert.Equal(t, 1, interview.Questions[1].Position)
	assert.Equal(t, interview.ID, interview.Questions[1].InterviewID)
	gemini.AssertExpectations(t)
}

func TestInterviewService_Start_Defaults(t *testing.T) {
	gemini := new(MockGemini)
	svc := NewInterviewService(newFakeInterviewRepo(), gemini, staticKnowledge{}, 1)

	gemini.On("GenerateTextWithRetry", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Generate 3 challenging but realistic general interview questions for a mid-level professional role.")
	}), float32(0.7), 1).Return("Why this company?", nil)

	interview, err := svc.Start(context.Background(), StartInterviewInput{InterviewType: "unknown"})
	require.NoError(t, err)

	assert.Equal(t, models.InterviewGeneral, interview.InterviewType)
	require.Len(t, interview.Questions, 3)
	assert.Equal(t, "Can you tell me about your experience as a professional?", interview.Questions[2].Text)
}

func TestInterviewService_SubmitAnswer_Text(t *testing.T) {
	svc, gemini, interview := startTestInterview(t)

	gemini.On("GenerateTextWithRetry", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Answer: I stayed calm and triaged.")
	}), float32(0.4), 2).Return(sampleAnswerFeedback, nil)
	gemini.On("GenerateText", mock.Anything, mock.Anything, float32(0.7)).
		Return("**What did you learn from it?**", nil)

	resp, err := svc.SubmitAnswer(context.Background(), interview.ID, AnswerInput{Text: "  I stayed calm and triaged. "})
	require.NoError(t, err)

	assert.Equal(t, "I stayed calm and triaged.", resp.Transcription)
	assert.NotContains(t, resp.Feedback, "*")
	assert.Equal(t, "Here's my feedback on your answer. Mention the outcome and what you learned.", resp.FeedbackSummary)
	assert.Equal(t, []string{"What did you learn from it?"}, resp.FollowUpQuestions)

	require.NotNil(t, resp.Ratings.ContentQuality)
	assert.Equal(t, 8.0, *resp.Ratings.ContentQuality)
	assert.Equal(t, 7.0, *resp.Ratings.Relevance)
	assert.Equal(t, 6.5, *resp.Ratings.Completeness)

	stored, err := svc.Get(context.Background(), interview.ID)
	require.NoError(t, err)
	q := stored.Questions[0]
	assert.Equal(t, "I stayed calm and triaged.", q.Answer)
	require.Len(t, q.FollowUps, 1)
	assert.Equal(t, "What did you learn from it?", q.FollowUps[0].Text)
}

func TestInterviewService_SubmitAnswer_FollowUpFailureKeepsFeedback(t *testing.T) {
	svc, gemini, interview := startTestInterview(t)

	gemini.On("GenerateTextWithRetry", mock.Anything, mock.Anything, float32(0.4), 2).Return("No ratings here.", nil)
	gemini.On("GenerateText", mock.Anything, mock.Anything, float32(0.7)).Return("", ErrService)

	resp, err := svc.SubmitAnswer(context.Background(), interview.ID, AnswerInput{QuestionIndex: 1, Text: "answer"})
	require.NoError(t, err)

	assert.Empty(t, resp.FollowUpQuestions)
	assert.Equal(t, defaultFeedbackSummary, resp.FeedbackSummary)
	assert.Nil(t, resp.Ratings.ContentQuality)
}

func TestInterviewService_SubmitAnswer_Audio(t *testing.T) {
	svc, gemini, interview := startTestInterview(t)
	audio := []byte("RIFF....WAVE")

	gemini.On("GenerateFromMedia", mock.Anything, mock.Anything, audio, "audio/webm").Return(" I kept the team calm. ", nil)
	gemini.On("GenerateTextWithRetry", mock.Anything, mock.Anything, float32(0.4), 2).Return(sampleAnswerFeedback, nil)
	gemini.On("GenerateText", mock.Anything, mock.Anything, float32(0.7)).Return("And then?", nil)

	resp, err := svc.SubmitAnswer(context.Background(), interview.ID, AnswerInput{
		Audio:         audio,
		AudioMimeType: "audio/webm;codecs=opus",
	})
	require.NoError(t, err)
	assert.Equal(t, "I kept the team calm.", resp.Transcription)
}

func TestInterviewService_SubmitAnswer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      AnswerInput
		setup   func(g *MockGemini)
		wantErr error
	}{
		{name: "Empty text", in: AnswerInput{Text: "  "}, wantErr: ErrEmptyAnswer},
		{name: "Question out of range", in: AnswerInput{QuestionIndex: 5, Text: "x"}, wantErr: ErrInvalidQuestion},
		{name: "Negative question", in: AnswerInput{QuestionIndex: -1, Text: "x"}, wantErr: ErrInvalidQuestion},
		{name: "Missing follow-up", in: AnswerInput{IsFollowUp: true, Text: "x"}, wantErr: ErrInvalidQuestion},
		{name: "Unsupported audio", in: AnswerInput{Audio: []byte("x"), AudioMimeType: "video/mp4"}, wantErr: ErrUnsupportedFormat},
		{
			name: "Silent recording",
			in:   AnswerInput{Audio: []byte("x"), AudioMimeType: "audio/wav"},
			setup: func(g *MockGemini) {
				g.On("GenerateFromMedia", mock.Anything, mock.Anything, mock.Anything, "audio/wav").Return("  ", nil)
			},
			wantErr: ErrEmptyAnswer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, gemini, interview := startTestInterview(t)
			if tt.setup != nil {
				tt.setup(gemini)
			}

			_, err := svc.SubmitAnswer(context.Background(), interview.ID, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
			gemini.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestInterviewService_SubmitAnswer_UnknownInterview(t *testing.T) {
	svc, _, _ := startTestInterview(t)

	_, err := svc.SubmitAnswer(context.Background(), uuid.New(), AnswerInput{Text: "x"})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestInterviewService_SubmitAnswer_FollowUp(t *testing.T) {
	svc, gemini, interview := startTestInterview(t)

	gemini.On("GenerateTextWithRetry", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Answer: I stayed calm")
	}), float32(0.4), 2).Return(sampleAnswerFeedback, nil)
	gemini.On("GenerateText", mock.Anything, mock.Anything, float32(0.7)).Return("What did you learn?", nil)
	_, err := svc.SubmitAnswer(context.Background(), interview.ID, AnswerInput{Text: "I stayed calm"})
	require.NoError(t, err)

	gemini.On("GenerateTextWithRetry", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Follow-up Question: What did you learn?")
	}), float32(0.4), 2).Return("Good reflection. *Add* a metric.", nil)

	resp, err := svc.SubmitAnswer(context.Background(), interview.ID, AnswerInput{IsFollowUp: true, Text: "To delegate earlier."})
	require.NoError(t, err)
	assert.Equal(t, "Good reflection. Add a metric.", resp.Feedback)

	stored, _ := svc.Get(context.Background(), interview.ID)
	followUp := stored.Questions[0].FollowUps[0]
	assert.Equal(t, "To delegate earlier.", followUp.Answer)
	assert.Equal(t, "Good reflection. Add a metric.", followUp.Feedback)
}

func TestInterviewService_Summarize(t *testing.T) {
	svc, gemini, interview := startTestInterview(t)

	gemini.On("GenerateTextWithRetry", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "- Question: Tell me about a stressful shift.")
	}), float32(0.5), 2).Return("**Overall** strong.", nil)
	gemini.On("GenerateText", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Overall strong.")
	}), float32(0.5)).Return("Great job overall.", nil)

	resp, err := svc.Summarize(context.Background(), interview.ID)
	require.NoError(t, err)
	assert.Equal(t, "Overall strong.", resp.Summary)
	assert.Equal(t, "Great job overall.", resp.CondensedSummary)

	stored, _ := svc.Get(context.Background(), interview.ID)
	assert.Equal(t, "Overall strong.", stored.Summary)
}

func TestInterviewService_Summarize_Failure(t *testing.T) {
	svc, gemini, interview := startTestInterview(t)

	gemini.On("GenerateTextWithRetry", mock.Anything, mock.Anything, float32(0.5), 2).
		Return("", errors.Join(ErrService, errors.New("down")))

	_, err := svc.Summarize(context.Background(), interview.ID)
	assert.ErrorIs(t, err, ErrService)
}

func TestCleanQuestions(t *testing.T) {
	tests := []struct {
		name     string
		response string
		count    int
		want     []string
	}{
		{
			name:     "Numbered list",
			response: "1. First?\n2) Second?\n\n3: Third?",
			count:    3,
			want:     []string{"First?", "Second?", "Third?"},
		},
		{
			name:     "Question labels",
			response: "**Question 1:** Why nursing?\nQuestion: What motivates you?",
			count:    2,
			want:     []string{"Why nursing?", "What motivates you?"},
		},
		{
			name:     "Keeps numbers inside text",
			response: "- 2020 was a hard year, how did you adapt?",
			count:    1,
			want:     []string{"2020 was a hard year, how did you adapt?"},
		},
		{
			name:     "Pads short list",
			response: "Only one?",
			count:    2,
			want:     []string{"Only one?", "Can you tell me about your experience as a chef?"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanQuestions(tt.response, "chef", tt.count))
		})
	}
}

func TestFeedbackSummary(t *testing.T) {
	assert.Equal(t,
		"Here's my feedback on your answer. Mention the outcome and what you learned.",
		feedbackSummary(sampleAnswerFeedback))
	assert.Equal(t, defaultFeedbackSummary, feedbackSummary("Nice answer."))
	assert.Equal(t, defaultFeedbackSummary, feedbackSummary("7. Specific Feedback:\n8. Overall"))
}

func TestNormalizeAudioType(t *testing.T) {
	assert.Equal(t, "audio/webm", normalizeAudioType(" Audio/WebM; codecs=opus"))
	assert.Equal(t, "audio/wav", normalizeAudioType("audio/wav"))
}
