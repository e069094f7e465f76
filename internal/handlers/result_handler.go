package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"jobbuddy/career-assistant/internal/models"
	"jobbuddy/career-assistant/internal/repositories"
	"jobbuddy/career-assistant/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ResultHandler struct {
	analysisRepo  repositories.AnalysisRepository
	exportService services.ExportService
}

func NewResultHandler(analysisRepo repositories.AnalysisRepository, exportService services.ExportService) *ResultHandler {
	return &ResultHandler{
		analysisRepo:  analysisRepo,
		exportService: exportService,
	}
}

func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	analysisID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid analysis ID format",
		})
	}

	analysis, err := h.analysisRepo.FindByID(c.UserContext(), analysisID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Analysis not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load analysis",
		})
	}

	return c.JSON(newResultResponse(analysis))
}

// HandleExport downloads completed analyses as a spreadsheet.
func (h *ResultHandler) HandleExport(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 500)
	if limit < 1 {
		limit = 500
	}

	var buf bytes.Buffer
	if err := h.exportService.ExportAnalyses(c.UserContext(), &buf, limit); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to export analyses: %v", err),
		})
	}

	filename := fmt.Sprintf("resume_analyses_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}

func newResultResponse(analysis *models.Analysis) models.AnalysisResultResponse {
	response := models.AnalysisResultResponse{
		ID:     analysis.ID.String(),
		Status: string(analysis.Status),
	}

	if analysis.Status == models.StatusCompleted {
		response.Result = models.NewAnalysisData(analysis)
	}

	if analysis.Status == models.StatusFailed && analysis.ErrorMessage != nil {
		response.ErrorMessage = analysis.ErrorMessage
	}

	return response
}
