package services

import (
	"fmt"
	"strings"

	"jobbuddy/career-assistant/internal/models"
)

// ChatSystemPrompt is sent as the system instruction of every chat request.
const ChatSystemPrompt = `You are JobBuddy AI, a helpful career and job search assistant.
Your role is to provide helpful, accurate, and supportive guidance on:
- Job search strategies and techniques
- Interview preparation and common questions
- Resume and cover letter optimization
- Career guidance and professional development
- Workplace skills and communication

Be concise, friendly, and professional. Provide practical advice that users can immediately apply.
If you don't know something, admit it rather than providing incorrect information.
Format your responses with appropriate HTML formatting for the chat interface.`

// Knowledge base document types.
const (
	DocTypeATSGuide       = "ats_guide"
	DocTypeInterviewGuide = "interview_guide"
	DocTypeCareerGuide    = "career_guide"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildResumeAnalysisPrompt asks for the bracket-tagged sections the parser
// reads back. The job match and missing skills sections are only requested
// when a job description is given.
func (pb *PromptBuilder) BuildResumeAnalysisPrompt(resumeText, jobDescription, guidelines string) string {
	var b strings.Builder

	b.WriteString("Analyze this resume and provide the following clearly labeled sections:\n\n")
	b.WriteString("[STRENGTHS]\nList 3-5 key strengths of the resume.\n\n")
	b.WriteString("[ATS_SCORE]\nProvide an ATS Compatibility Score out of 10 (format exactly as: ATS Score: X/10)\n\n")
	if jobDescription != "" {
		b.WriteString("[JOB_MATCH]\nProvide a Job Match Score out of 10 based on how well the resume matches the job description (format exactly as: Job Match Score: X/10)\n\n")
	}
	b.WriteString("[AREAS_TO_IMPROVE]\nList 3 specific areas where the resume could be improved.\n\n")
	b.WriteString("[ATS_ISSUES]\nIdentify formatting issues that might cause ATS problems.\n\n")
	if jobDescription != "" {
		b.WriteString("[MISSING_SKILLS]\nList skills mentioned in the job description that are missing from the resume.\n\n")
	}

	if guidelines != "" {
		b.WriteString("Use these reviewing guidelines where relevant:\n")
		b.WriteString(guidelines)
		b.WriteString("\n\n")
	}

	b.WriteString("Resume text:\n")
	b.WriteString(resumeText)
	b.WriteString("\n")

	if jobDescription != "" {
		b.WriteString("\nJob Description:\n")
		b.WriteString(jobDescription)
		b.WriteString("\n")
	}

	return b.String()
}

// BuildHeuristicAnalysis produces a local analysis in the same bracket format
// as the model, used when the model cannot be reached.
func (pb *PromptBuilder) BuildHeuristicAnalysis(resumeText string) string {
	words := len(strings.Fields(resumeText))
	score := min(75, words/10)

	lower := strings.ToLower(resumeText)
	keywordCount := 0
	for _, kw := range []string{"experience", "skills", "education", "project", "achievement"} {
		if strings.Contains(lower, kw) {
			keywordCount++
		}
	}

	return fmt.Sprintf(`[STRENGTHS]
- Resume contains content that can be analyzed
- %d out of 5 important section keywords detected

[ATS_SCORE]
ATS Score: %.1f/10

[AREAS_TO_IMPROVE]
- Consider expanding on your experiences with more quantifiable achievements
- Make sure your resume includes relevant keywords from the job description
- Format your resume with a clean, ATS-friendly layout

[ATS_ISSUES]
- Unable to perform detailed analysis due to API limitations
`, keywordCount, float64(score)/10)
}

// BuildChatContext condenses earlier turns so a fresh conversation keeps its
// context.
func (pb *PromptBuilder) BuildChatContext(history []ChatTurn, knowledge string) string {
	if len(history) == 0 && knowledge == "" {
		return ""
	}

	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("Here's our conversation so far:\n\n")
		for _, turn := range history {
			prefix := "User: "
			if turn.Role == RoleModel {
				prefix = "You: "
			}
			b.WriteString(prefix)
			b.WriteString(turn.Content)
			b.WriteString("\n\n")
		}
	}

	if knowledge != "" {
		b.WriteString("Relevant career guidance:\n")
		b.WriteString(knowledge)
		b.WriteString("\n\n")
	}

	b.WriteString("Please continue helping the user with their job search and career questions.")
	return b.String()
}

func (pb *PromptBuilder) BuildOCRPrompt() string {
	return BuildOCRPrompt()
}

// BuildOCRPrompt asks the model for the verbatim text of a résumé image.
func BuildOCRPrompt() string {
	return `Extract all readable text from this resume image.
Keep the original reading order and line breaks. Return only the extracted text without commentary.`
}

func (pb *PromptBuilder) BuildTranscriptionPrompt() string {
	return `Transcribe this interview answer recording word for word.
Return only the transcription without commentary. If nothing is said, return an empty response.`
}

// interviewStyle holds the wording that differs per interview type.
type interviewStyle struct {
	label          string
	questionFocus  string
	contentQuality string
	relevance      string
	completeness   string
	strengths      string
	improvement    string
	specific       string
	followUpFocus  string
	briefFocus     string
}

var interviewStyles = map[models.InterviewType]interviewStyle{
	models.InterviewBehavioral: {
		label: "behavioral",
		questionFocus: `Focus EXCLUSIVELY on past experiences and how the candidate handled specific situations.
Each question MUST start with phrases like "Tell me about a time when..." or "Describe a situation where..." or "Give me an example of..."`,
		contentQuality: "Rate and explain how well they described a specific situation and their role in it.",
		relevance:      "How well did they address the specific behavioral scenario asked about?",
		completeness:   "Did they cover all elements of the STAR method (Situation, Task, Action, Result)?",
		strengths:      "What did they do well in describing their past behavior and actions?",
		improvement:    "How could they better structure their behavioral examples?",
		specific:       "Give actionable advice on improving their behavioral storytelling.",
		followUpFocus:  "Probes deeper into the specific situation the candidate described, asking about their actions, the results, or lessons learned.",
		briefFocus:     "Focus on how well they elaborated on their specific actions and results in the situation.",
	},
	models.InterviewTechnical: {
		label: "technical",
		questionFocus: `Focus EXCLUSIVELY on technical skills, knowledge, and problem-solving abilities specific to the role.
Include questions about methodologies, tools, and technologies relevant to the role.`,
		contentQuality: "Rate and explain the technical accuracy and depth of knowledge shown.",
		relevance:      "How well did they address the specific technical concepts asked about?",
		completeness:   "Did they cover all technical aspects of the question?",
		strengths:      "What technical knowledge or skills did they demonstrate well?",
		improvement:    "What technical concepts could they explain better?",
		specific:       "Give actionable advice on improving their technical explanations.",
		followUpFocus:  "Explores the depth of their technical knowledge or asks how they would apply it in a harder scenario.",
		briefFocus:     "Focus on the accuracy and depth of the technical explanation.",
	},
	models.InterviewCaseStudy: {
		label: "case study",
		questionFocus: `Present hypothetical business scenarios that the candidate needs to analyze and solve.
Focus on assessing problem-solving approach, analytical thinking, and business acumen.`,
		contentQuality: "Rate and explain the quality of their analysis and proposed solution.",
		relevance:      "How well did they address the business problem presented?",
		completeness:   "Did they consider all key factors, risks, and trade-offs?",
		strengths:      "What aspects of their problem-solving approach were strong?",
		improvement:    "How could their analysis or structure be improved?",
		specific:       "Give actionable advice on structuring case study answers.",
		followUpFocus:  "Challenges an assumption in their solution or adds a new constraint to the case.",
		briefFocus:     "Focus on the structure of their reasoning and the quality of their conclusion.",
	},
	models.InterviewSituational: {
		label: "situational",
		questionFocus: `Focus EXCLUSIVELY on hypothetical future scenarios with questions like "What would you do if..." or "How would you handle..."
Questions should assess decision-making, judgment, and how candidates would respond to job-specific situations.`,
		contentQuality: "Rate and explain the soundness of the approach they proposed.",
		relevance:      "How well did they address the hypothetical situation asked about?",
		completeness:   "Did they consider stakeholders, consequences, and alternatives?",
		strengths:      "What did they do well in reasoning about the situation?",
		improvement:    "How could their judgment or approach be stronger?",
		specific:       "Give actionable advice on answering situational questions.",
		followUpFocus:  "Changes one element of the scenario and asks how their approach would differ.",
		briefFocus:     "Focus on their judgment and how practical their proposed actions are.",
	},
	models.InterviewGeneral: {
		label: "general",
		questionFocus: `Include a balanced mix of questions about experience, skills, and work style.
Cover topics like professional background, strengths and weaknesses, and career goals.`,
		contentQuality: "Rate and explain the substance and clarity of the answer.",
		relevance:      "How well did they address the question asked?",
		completeness:   "Did they fully answer every part of the question?",
		strengths:      "What did they do well?",
		improvement:    "What could they improve?",
		specific:       "Give actionable advice on improving this answer.",
		followUpFocus:  "Asks for more detail or a concrete example related to their answer.",
		briefFocus:     "Focus on clarity and how convincing the answer was.",
	},
}

func styleFor(t models.InterviewType) interviewStyle {
	if s, ok := interviewStyles[t]; ok {
		return s
	}
	return interviewStyles[models.InterviewGeneral]
}

func (pb *PromptBuilder) BuildQuestionPrompt(t models.InterviewType, jobRole, level string, count int) string {
	s := styleFor(t)
	return fmt.Sprintf(`Generate %d challenging but realistic %s interview questions for a %s %s role.
%s
Adjust the complexity and expectations based on the %s position level.
Phrase them as clear, conversational questions without numbers or commentary and start directly from question 1 without telling me what you're gonna do.
Put each question on its own line.`,
		count, s.label, level, jobRole, s.questionFocus, level)
}

func (pb *PromptBuilder) BuildAnswerAnalysisPrompt(t models.InterviewType, jobRole, level, question, answer string) string {
	s := styleFor(t)
	return fmt.Sprintf(`Analyze this answer for a %s interview for a %s %s position:

Question: %s
Answer: %s

Provide detailed feedback on:
1. Content Quality (0-10): %s
2. Relevance to Question (0-10): %s
3. Completeness (0-10): %s
4. Sentiment Analysis: Comment on confidence, enthusiasm, and tone.
5. Strengths: %s
6. Areas for Improvement: %s
7. Specific Feedback: %s
8. Overall Impression: Summarize your assessment of the response.
9. Additional Insights: Any other observations.

Write each rating exactly as "Content Quality (0-10): X". Do not use "*" characters.`,
		s.label, level, jobRole, question, answer,
		s.contentQuality, s.relevance, s.completeness, s.strengths, s.improvement, s.specific)
}

func (pb *PromptBuilder) BuildFollowUpPrompt(t models.InterviewType, jobRole, level, question, answer string) string {
	s := styleFor(t)
	return fmt.Sprintf(`Based on this %s interview question and answer for a %s %s position:

Question: %s
Answer: %s

Generate 1 follow-up question that %s
It must be appropriate for a %s position level.

Phrase it as a clear, conversational question without numbering or commentary. Do not use "*" characters.`,
		s.label, level, jobRole, question, answer, s.followUpFocus, level)
}

func (pb *PromptBuilder) BuildBriefFeedbackPrompt(t models.InterviewType, question, answer string) string {
	s := styleFor(t)
	return fmt.Sprintf(`Give a very brief (2-3 sentence) feedback on this follow-up answer for a %s interview:

Follow-up Question: %s
Answer: %s

%s
Keep it constructive and specific, mentioning one strength and one suggestion for improvement. Do not use "*" characters.`,
		s.label, question, answer, s.briefFocus)
}

func (pb *PromptBuilder) BuildInterviewSummaryPrompt(interview *models.Interview) string {
	s := styleFor(interview.InterviewType)

	var qa strings.Builder
	for _, q := range interview.Questions {
		fmt.Fprintf(&qa, "- Question: %s\n", q.Text)
		if q.Answer != "" {
			fmt.Fprintf(&qa, "  Answer: %s\n", q.Answer)
		}
		if q.FeedbackSummary != "" {
			fmt.Fprintf(&qa, "  Feedback: %s\n", q.FeedbackSummary)
		}
	}

	return fmt.Sprintf(`As an interview coach for a %s %s position, provide a comprehensive summary of this %s interview session.

Interview Type: %s
Position Level: %s

Questions asked:
%s
Based on the candidate's answers and the feedback provided, please summarize:
1. Overall performance (strengths and areas for improvement)
2. Key recommendations for the candidate specific to %s interviews
3. Suggested preparation steps for future %s interviews for %s %s positions

Keep the summary concise but actionable, highlighting the most important points. Do not use "*" characters.`,
		interview.PositionLevel, interview.JobRole, s.label,
		s.label, interview.PositionLevel,
		qa.String(),
		s.label, s.label, interview.PositionLevel, interview.JobRole)
}

func (pb *PromptBuilder) BuildCondensedSummaryPrompt(summary string) string {
	return fmt.Sprintf(`Based on this interview summary, create a brief (3-4 sentences) encouraging verbal conclusion
to read to the candidate. Be specific but upbeat, focusing on key strengths and one area to work on. Do not use "*" characters:

%s`, summary)
}

// BuildRetrievalQuery creates the knowledge base query for a document type.
func (pb *PromptBuilder) BuildRetrievalQuery(docType, context string) string {
	switch docType {
	case DocTypeATSGuide:
		return "Resume formatting, ATS compatibility and keyword guidelines"
	case DocTypeInterviewGuide:
		return fmt.Sprintf("Interview preparation advice for %s", context)
	default:
		return context
	}
}

// FormatRAGContext renders search results as numbered context blocks.
func FormatRAGContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Context %d (Score: %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}
