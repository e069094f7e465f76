package parser

// ResumeAnalysis is the record handed to the presentation layer. Scores are
// nil when the response did not contain them.
type ResumeAnalysis struct {
	Strengths       string   `json:"strengths"`
	ATSScore        *float64 `json:"atsScore"`
	ATSPercentage   *int     `json:"atsPercentage"`
	MatchScore      *float64 `json:"matchScore"`
	MatchPercentage *int     `json:"matchPercentage"`
	AreasToImprove  string   `json:"areasToImprove"`
	ATSIssues       string   `json:"atsIssues"`
	MissingSkills   string   `json:"missingSkills"`
}

// Resume projects a result parsed with ResumeSchema onto ResumeAnalysis.
// Match scores and missing skills only make sense against a job description,
// so they are left empty when hasJobDescription is false.
func (p ParsedAnalysis) Resume(hasJobDescription bool) ResumeAnalysis {
	out := ResumeAnalysis{
		Strengths:      p.Section(SectionStrengths),
		AreasToImprove: p.Section(SectionAreasToImprove),
		ATSIssues:      p.Section(SectionATSIssues),
	}
	out.ATSScore, out.ATSPercentage = p.Score(LabelATS).Value()

	if hasJobDescription {
		out.MatchScore, out.MatchPercentage = p.Score(LabelMatch).Value()
		out.MissingSkills = p.Section(SectionMissingSkills)
	}

	return out
}

// ParseResume parses a résumé analysis response with ResumeSchema.
func ParseResume(text string, hasJobDescription bool) (ResumeAnalysis, error) {
	parsed, err := Parse(text, ResumeSchema)
	if err != nil {
		return ResumeAnalysis{}, err
	}
	return parsed.Resume(hasJobDescription), nil
}

// AnswerRatings are the 0-10 ratings found in interview answer feedback.
type AnswerRatings struct {
	ContentQuality *float64 `json:"contentQuality"`
	Relevance      *float64 `json:"relevance"`
	Completeness   *float64 `json:"completeness"`
}

// ParseAnswerRatings extracts ratings from feedback with AnswerSchema.
func ParseAnswerRatings(feedback string) (AnswerRatings, error) {
	parsed, err := Parse(feedback, AnswerSchema)
	if err != nil {
		return AnswerRatings{}, err
	}

	var out AnswerRatings
	out.ContentQuality, _ = parsed.Score(LabelContentQuality).Value()
	out.Relevance, _ = parsed.Score(LabelRelevance).Value()
	out.Completeness, _ = parsed.Score(LabelCompleteness).Value()
	return out, nil
}
