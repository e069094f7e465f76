package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"jobbuddy/career-assistant/internal/models"
	"jobbuddy/career-assistant/internal/repositories"
)

const exportSheet = "Analyses"

type ExportService interface {
	ExportAnalyses(ctx context.Context, w io.Writer, limit int) error
}

type exportService struct {
	analysisRepo repositories.AnalysisRepository
}

func NewExportService(analysisRepo repositories.AnalysisRepository) ExportService {
	return &exportService{analysisRepo: analysisRepo}
}

// ExportAnalyses writes completed analyses as an xlsx workbook.
func (e *exportService) ExportAnalyses(ctx context.Context, w io.Writer, limit int) error {
	analyses, err := e.analysisRepo.ListCompleted(ctx, limit)
	if err != nil {
		return err
	}

	f, err := BuildAnalysesWorkbook(analyses)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// BuildAnalysesWorkbook lays out one row per analysis, colour-coded by ATS
// score.
func BuildAnalysesWorkbook(analyses []models.Analysis) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	scoreStyles := map[string]int{}
	for name, color := range map[string]string{"good": "C6EFCE", "fair": "FFEB9C", "poor": "FFC7CE"} {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create score style: %w", err)
		}
		scoreStyles[name] = style
	}

	headers := []string{"ID", "File", "Created", "ATS Score", "ATS %", "Match Score", "Match %", "Strengths", "Areas To Improve", "ATS Issues", "Missing Skills", "Fallback"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(exportSheet, cell, header)
		f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}
	f.SetColWidth(exportSheet, "A", "A", 38)
	f.SetColWidth(exportSheet, "B", "C", 22)
	f.SetColWidth(exportSheet, "D", "G", 12)
	f.SetColWidth(exportSheet, "H", "K", 50)

	for i, a := range analyses {
		row := i + 2
		values := []interface{}{
			a.ID.String(),
			a.Document.OriginalFileName,
			a.CreatedAt.Format(time.DateTime),
			cellValue(a.ATSScore),
			cellValue(a.ATSPercentage),
			cellValue(a.MatchScore),
			cellValue(a.MatchPercentage),
			a.Strengths,
			a.AreasToImprove,
			a.ATSIssues,
			a.MissingSkills,
			a.UsedFallback,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(exportSheet, cell, v)
		}

		if a.ATSScore != nil {
			cell := fmt.Sprintf("D%d", row)
			f.SetCellStyle(exportSheet, cell, cell, scoreStyles[scoreBand(*a.ATSScore)])
		}
	}

	return f, nil
}

func scoreBand(score float64) string {
	switch {
	case score >= 7:
		return "good"
	case score >= 5:
		return "fair"
	default:
		return "poor"
	}
}

func cellValue[T int | float64](v *T) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
