package models

import "jobbuddy/career-assistant/internal/parser"

type UploadResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	FileType     string `json:"file_type"`
	ContentType  string `json:"content_type"`
}

type AnalyzeResponse struct {
	ID       string          `json:"id"`
	Status   string          `json:"status"`
	Document *UploadResponse `json:"document,omitempty"`
}

type AnalysisResultResponse struct {
	ID           string        `json:"id"`
	Status       string        `json:"status"`
	Result       *AnalysisData `json:"result,omitempty"`
	ErrorMessage *string       `json:"error_message,omitempty"`
}

// AnalysisData is the output record of a completed résumé analysis.
type AnalysisData struct {
	parser.ResumeAnalysis
	ExtractedText     string `json:"extractedText"`
	RawResponse       string `json:"rawResponse"`
	HasJobDescription bool   `json:"hasJobDescription"`
	UsedFallback      bool   `json:"usedFallback"`
}

// NewAnalysisData builds the output record from a stored analysis.
func NewAnalysisData(a *Analysis) *AnalysisData {
	return &AnalysisData{
		ResumeAnalysis: parser.ResumeAnalysis{
			Strengths:       a.Strengths,
			ATSScore:        a.ATSScore,
			ATSPercentage:   a.ATSPercentage,
			MatchScore:      a.MatchScore,
			MatchPercentage: a.MatchPercentage,
			AreasToImprove:  a.AreasToImprove,
			ATSIssues:       a.ATSIssues,
			MissingSkills:   a.MissingSkills,
		},
		ExtractedText:     a.ExtractedText,
		RawResponse:       a.RawResponse,
		HasJobDescription: a.HasJobDescription(),
		UsedFallback:      a.UsedFallback,
	}
}

type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type ResetRequest struct {
	UserID string `json:"user_id"`
}

type StartInterviewRequest struct {
	JobRole       string `json:"job_role"`
	InterviewType string `json:"interview_type"`
	PositionLevel string `json:"position_level"`
	NumQuestions  int    `json:"num_questions"`
}

type StartInterviewResponse struct {
	ID            string   `json:"id"`
	InterviewType string   `json:"interview_type"`
	Questions     []string `json:"questions"`
}

type AnswerResponse struct {
	Transcription     string               `json:"transcription"`
	Feedback          string               `json:"feedback"`
	FeedbackSummary   string               `json:"feedback_summary,omitempty"`
	FollowUpQuestions []string             `json:"follow_up_questions,omitempty"`
	Ratings           parser.AnswerRatings `json:"ratings"`
}

type SummaryResponse struct {
	Summary          string `json:"summary"`
	CondensedSummary string `json:"condensed_summary"`
}
