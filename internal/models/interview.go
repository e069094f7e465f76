package models

import (
	"time"

	"github.com/google/uuid"
)

type InterviewType string

const (
	InterviewGeneral     InterviewType = "general"
	InterviewBehavioral  InterviewType = "behavioral"
	InterviewTechnical   InterviewType = "technical"
	InterviewCaseStudy   InterviewType = "case-study"
	InterviewSituational InterviewType = "situational"
)

// ParseInterviewType falls back to InterviewGeneral for unknown values.
func ParseInterviewType(s string) InterviewType {
	switch t := InterviewType(s); t {
	case InterviewGeneral, InterviewBehavioral, InterviewTechnical, InterviewCaseStudy, InterviewSituational:
		return t
	default:
		return InterviewGeneral
	}
}

type Interview struct {
	ID               uuid.UUID           `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobRole          string              `gorm:"type:text" json:"job_role"`
	InterviewType    InterviewType       `gorm:"type:text;default:'general'" json:"interview_type"`
	PositionLevel    string              `gorm:"type:text" json:"position_level"`
	Summary          string              `gorm:"type:text" json:"summary,omitempty"`
	CondensedSummary string              `gorm:"type:text" json:"condensed_summary,omitempty"`
	CreatedAt        time.Time           `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	Questions        []InterviewQuestion `gorm:"foreignKey:InterviewID" json:"questions"`
}

func (Interview) TableName() string {
	return "interviews"
}

type InterviewQuestion struct {
	ID              uuid.UUID           `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	InterviewID     uuid.UUID           `gorm:"type:uuid;not null;index" json:"interview_id"`
	Position        int                 `gorm:"not null" json:"position"`
	Text            string              `gorm:"type:text" json:"text"`
	Answer          string              `gorm:"type:text" json:"answer,omitempty"`
	Feedback        string              `gorm:"type:text" json:"feedback,omitempty"`
	FeedbackSummary string              `gorm:"type:text" json:"feedback_summary,omitempty"`
	ContentQuality  *float64            `gorm:"type:decimal(4,2)" json:"content_quality,omitempty"`
	Relevance       *float64            `gorm:"type:decimal(4,2)" json:"relevance,omitempty"`
	Completeness    *float64            `gorm:"type:decimal(4,2)" json:"completeness,omitempty"`
	FollowUps       []InterviewFollowUp `gorm:"foreignKey:QuestionID" json:"follow_ups"`
}

func (InterviewQuestion) TableName() string {
	return "interview_questions"
}

type InterviewFollowUp struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Position   int       `gorm:"not null" json:"position"`
	Text       string    `gorm:"type:text" json:"text"`
	Answer     string    `gorm:"type:text" json:"answer,omitempty"`
	Feedback   string    `gorm:"type:text" json:"feedback,omitempty"`
}

func (InterviewFollowUp) TableName() string {
	return "interview_follow_ups"
}
