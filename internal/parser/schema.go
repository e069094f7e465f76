package parser

// ScoreStyle selects how a score sentence is written in the response.
type ScoreStyle int

const (
	// StyleOutOfTen matches "<Label> Score: 8/10".
	StyleOutOfTen ScoreStyle = iota
	// StyleRating matches "<Label> (0-10): 8".
	StyleRating
)

// SectionSpec binds a bracket tag such as [STRENGTHS] to an output field.
type SectionSpec struct {
	Name  string
	Field string
}

// ScoreSpec describes one numeric score. Section is searched first; the full
// response is only searched when FullTextFallback is set.
type ScoreSpec struct {
	Field            string
	Label            string
	Section          string
	Style            ScoreStyle
	FullTextFallback bool
}

// Schema is the declarative rule table a response is parsed against.
type Schema struct {
	Sections []SectionSpec
	Scores   []ScoreSpec
}

// SectionNames returns the tags of the schema in declaration order.
func (s Schema) SectionNames() []string {
	names := make([]string, 0, len(s.Sections))
	for _, sec := range s.Sections {
		names = append(names, sec.Name)
	}
	return names
}

const (
	SectionStrengths      = "STRENGTHS"
	SectionATSScore       = "ATS_SCORE"
	SectionJobMatch       = "JOB_MATCH"
	SectionAreasToImprove = "AREAS_TO_IMPROVE"
	SectionATSIssues      = "ATS_ISSUES"
	SectionMissingSkills  = "MISSING_SKILLS"

	LabelATS   = "ATS"
	LabelMatch = "Match"
)

// ResumeSchema is the table used for résumé analysis responses.
var ResumeSchema = Schema{
	Sections: []SectionSpec{
		{Name: SectionStrengths, Field: "strengths"},
		{Name: SectionATSScore, Field: "atsScore"},
		{Name: SectionJobMatch, Field: "matchScore"},
		{Name: SectionAreasToImprove, Field: "areasToImprove"},
		{Name: SectionATSIssues, Field: "atsIssues"},
		{Name: SectionMissingSkills, Field: "missingSkills"},
	},
	Scores: []ScoreSpec{
		{Field: "atsScore", Label: LabelATS, Section: SectionATSScore, FullTextFallback: true},
		{Field: "matchScore", Label: LabelMatch, Section: SectionJobMatch, FullTextFallback: true},
	},
}

const (
	LabelContentQuality = "Content Quality"
	LabelRelevance      = "Relevance to Question"
	LabelCompleteness   = "Completeness"
)

// AnswerSchema extracts the 0-10 ratings from interview answer feedback.
// The feedback has no bracket tags, so every rating is read from the full text.
var AnswerSchema = Schema{
	Scores: []ScoreSpec{
		{Field: "contentQuality", Label: LabelContentQuality, Style: StyleRating, FullTextFallback: true},
		{Field: "relevance", Label: LabelRelevance, Style: StyleRating, FullTextFallback: true},
		{Field: "completeness", Label: LabelCompleteness, Style: StyleRating, FullTextFallback: true},
	},
}
