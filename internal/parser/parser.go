// Package parser turns free text returned by a language model into a fixed
// schema of labeled sections and normalized scores.
//
// Sections are demarcated by bracket tags:
//
//	[STRENGTHS]
//	Clear layout
//	[ATS_SCORE]
//	ATS Score: 8/10
//
// Missing structure is never an error: an absent tag yields an empty section
// and an absent score yields a ScoreField with Found set to false. The package
// is pure and safe for concurrent use.
package parser

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

// ErrMalformedInput reports input the parser cannot work with at all, as
// opposed to input that merely lacks the expected structure.
var ErrMalformedInput = errors.New("malformed input")

// LabeledSection is the text found under one bracket tag.
type LabeledSection struct {
	Name    string `json:"name"`
	RawText string `json:"rawText"`
}

// ScoreField is one numeric evaluation. RawValue and Percentage are only
// meaningful when Found is true.
type ScoreField struct {
	Label      string  `json:"label"`
	RawValue   float64 `json:"rawValue"`
	Percentage int     `json:"percentage"`
	Found      bool    `json:"found"`
}

// Value returns the raw value and percentage as pointers, nil when absent.
func (f ScoreField) Value() (*float64, *int) {
	if !f.Found {
		return nil, nil
	}
	raw, pct := f.RawValue, f.Percentage
	return &raw, &pct
}

// ParsedAnalysis holds every requested section and score, keyed by tag name
// and score label respectively.
type ParsedAnalysis struct {
	Sections map[string]LabeledSection `json:"sections"`
	Scores   map[string]ScoreField     `json:"scores"`
}

// Section returns the trimmed text of a section, or "" when absent.
func (p ParsedAnalysis) Section(name string) string {
	return p.Sections[strings.ToUpper(name)].RawText
}

// Score returns the score for label. The zero ScoreField reports Found=false.
func (p ParsedAnalysis) Score(label string) ScoreField {
	return p.Scores[label]
}

const maxScore = 10

var patternCache sync.Map

func compile(pattern string) *regexp.Regexp {
	if re, ok := patternCache.Load(pattern); ok {
		return re.(*regexp.Regexp)
	}
	re, _ := patternCache.LoadOrStore(pattern, regexp.MustCompile(pattern))
	return re.(*regexp.Regexp)
}

func sectionPattern(name string) string {
	return `(?is)\[` + regexp.QuoteMeta(name) + `\](.*?)(?:\[|\z)`
}

// numeral captures a number that is not the tail of ".5" or "8,5".
const numeral = `[^\d.,\n](\d+(?:\.\d+)?)`

func scorePattern(label string, style ScoreStyle) string {
	quoted := regexp.QuoteMeta(strings.TrimSpace(label))
	switch style {
	case StyleRating:
		return `(?i)` + quoted + `[^\n]*?\(\s*0\s*-\s*10\s*\)[^\n\d]*?` + numeral
	default:
		return `(?i)` + quoted + `[^\n]*?\bscore[^\n]*?` + numeral + `\s*/\s*10\b`
	}
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty section name", ErrMalformedInput)
	}
	if strings.ContainsAny(name, "[]") {
		return fmt.Errorf("%w: section name %q contains brackets", ErrMalformedInput, name)
	}
	return nil
}

func validateText(text string) error {
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: text is not valid UTF-8", ErrMalformedInput)
	}
	return nil
}

// ExtractSections returns the trimmed content of every requested tag. The
// content of [NAME] runs until the next "[" or the end of the text; the first
// occurrence of a tag wins and tags are matched case-insensitively.
func ExtractSections(text string, names []string) (map[string]string, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}

	sections := make(map[string]string, len(names))
	for _, name := range names {
		if err := validateName(name); err != nil {
			return nil, err
		}

		sections[name] = ""
		if m := compile(sectionPattern(name)).FindStringSubmatch(text); m != nil {
			sections[name] = strings.TrimSpace(m[1])
		}
	}

	return sections, nil
}

// ExtractScore looks for "<label> ... Score ... N/10" in text, then in
// fallback when that is non-empty.
func ExtractScore(text, label, fallback string) (ScoreField, error) {
	return extractScore(text, label, fallback, StyleOutOfTen)
}

// ExtractRating looks for "<label> (0-10): N" in text, then in fallback.
func ExtractRating(text, label, fallback string) (ScoreField, error) {
	return extractScore(text, label, fallback, StyleRating)
}

func extractScore(text, label, fallback string, style ScoreStyle) (ScoreField, error) {
	field := ScoreField{Label: label}

	if strings.TrimSpace(label) == "" {
		return field, fmt.Errorf("%w: empty score label", ErrMalformedInput)
	}
	if err := validateText(text); err != nil {
		return field, err
	}
	if err := validateText(fallback); err != nil {
		return field, err
	}

	re := compile(scorePattern(label, style))
	for _, candidate := range []string{text, fallback} {
		if candidate == "" {
			continue
		}
		m := re.FindStringSubmatch(candidate)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		value = math.Min(math.Max(value, 0), maxScore)

		field.RawValue = value
		field.Percentage = int(math.Round(value / maxScore * 100))
		field.Found = true
		return field, nil
	}

	return field, nil
}

// Parse runs every rule of schema against text.
func Parse(text string, schema Schema) (ParsedAnalysis, error) {
	result := ParsedAnalysis{
		Sections: make(map[string]LabeledSection, len(schema.Sections)),
		Scores:   make(map[string]ScoreField, len(schema.Scores)),
	}

	sections, err := ExtractSections(text, schema.SectionNames())
	if err != nil {
		return result, err
	}
	for _, spec := range schema.Sections {
		result.Sections[strings.ToUpper(spec.Name)] = LabeledSection{
			Name:    spec.Name,
			RawText: sections[spec.Name],
		}
	}

	for _, spec := range schema.Scores {
		scoped, fallback := text, ""
		if spec.Section != "" {
			scoped = sections[spec.Section]
			if spec.FullTextFallback {
				fallback = text
			}
		}

		score, err := extractScore(scoped, spec.Label, fallback, spec.Style)
		if err != nil {
			return result, err
		}
		result.Scores[spec.Label] = score
	}

	return result, nil
}
