package models

import (
	"time"

	"github.com/google/uuid"
)

type AnalysisStatus string

const (
	StatusQueued     AnalysisStatus = "queued"
	StatusProcessing AnalysisStatus = "processing"
	StatusCompleted  AnalysisStatus = "completed"
	StatusFailed     AnalysisStatus = "failed"
)

type Analysis struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DocumentID      uuid.UUID      `gorm:"type:uuid;not null" json:"document_id"`
	JobDescription  string         `gorm:"type:text" json:"job_description"`
	Status          AnalysisStatus `gorm:"not null;default:'queued';index" json:"status"`
	Strengths       string         `gorm:"type:text" json:"strengths"`
	ATSScore        *float64       `gorm:"type:decimal(4,2)" json:"ats_score,omitempty"`
	ATSPercentage   *int           `json:"ats_percentage,omitempty"`
	MatchScore      *float64       `gorm:"type:decimal(4,2)" json:"match_score,omitempty"`
	MatchPercentage *int           `json:"match_percentage,omitempty"`
	AreasToImprove  string         `gorm:"type:text" json:"areas_to_improve"`
	ATSIssues       string         `gorm:"type:text" json:"ats_issues"`
	MissingSkills   string         `gorm:"type:text" json:"missing_skills"`
	ExtractedText   string         `gorm:"type:text" json:"extracted_text"`
	RawResponse     string         `gorm:"type:text" json:"raw_response"`
	UsedFallback    bool           `gorm:"default:false" json:"used_fallback"`
	ErrorMessage    *string        `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Document Document `gorm:"foreignKey:DocumentID" json:"-"`
}

func (Analysis) TableName() string {
	return "analyses"
}

// HasJobDescription reports whether the analysis was run against a job posting.
func (a *Analysis) HasJobDescription() bool {
	return a.JobDescription != ""
}
