package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"jobbuddy/career-assistant/internal/models"
	"jobbuddy/career-assistant/internal/repositories"
	"jobbuddy/career-assistant/internal/services"
)

const resumeFileType = "resume"

type AnalyzeHandler struct {
	docRepo         repositories.DocumentRepository
	analysisRepo    repositories.AnalysisRepository
	storageService  services.StorageService
	analyzerService services.AnalyzerService
	worker          services.Worker
	maxFileSize     int64
}

func NewAnalyzeHandler(
	docRepo repositories.DocumentRepository,
	analysisRepo repositories.AnalysisRepository,
	storageService services.StorageService,
	analyzerService services.AnalyzerService,
	worker services.Worker,
	maxFileSize int64,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		docRepo:         docRepo,
		analysisRepo:    analysisRepo,
		storageService:  storageService,
		analyzerService: analyzerService,
		worker:          worker,
		maxFileSize:     maxFileSize,
	}
}

// HandleAnalyze stores the uploaded résumé and queues its analysis. With
// ?wait=true the analysis runs inside the request and the result is returned.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	file, err := c.FormFile("resumeFile")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded. Please upload 'resumeFile'.",
		})
	}

	if file.Filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file selected",
		})
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	ctx := c.UserContext()
	stored, err := h.storageService.SaveFile(ctx, file, resumeFileType)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedFormat) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "File type not allowed. Please upload PDF, DOCX, TXT or an image.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save resume file: %v", err),
		})
	}

	now := time.Now()
	doc := models.Document{
		ID:               uuid.New(),
		Filename:         stored.Key,
		OriginalFileName: file.Filename,
		FileType:         resumeFileType,
		ContentType:      stored.ContentType,
		SizeBytes:        stored.Size,
		StorageDriver:    h.storageService.Driver(),
		FilePath:         stored.Path,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := h.docRepo.Create(ctx, &doc); err != nil {
		h.storageService.DeleteFile(ctx, stored.Key)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save resume document record",
		})
	}

	wait := c.QueryBool("wait")

	// An inline analysis starts as processing so the pending-job poller skips it.
	status := models.StatusQueued
	if wait {
		status = models.StatusProcessing
	}

	analysis := models.Analysis{
		ID:             uuid.New(),
		DocumentID:     doc.ID,
		JobDescription: strings.TrimSpace(c.FormValue("job_description")),
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.analysisRepo.Create(ctx, &analysis); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create analysis job",
		})
	}

	if wait {
		if err := h.analyzerService.AnalyzeResume(ctx, analysis.ID); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"id":     analysis.ID.String(),
				"status": models.StatusFailed,
				"error":  err.Error(),
			})
		}

		completed, err := h.analysisRepo.FindByID(ctx, analysis.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to load analysis result",
			})
		}
		return c.JSON(newResultResponse(completed))
	}

	h.worker.EnqueueJob(analysis.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.AnalyzeResponse{
		ID:     analysis.ID.String(),
		Status: string(analysis.Status),
		Document: &models.UploadResponse{
			ID:           doc.ID.String(),
			Filename:     doc.Filename,
			OriginalName: doc.OriginalFileName,
			FileType:     doc.FileType,
			ContentType:  doc.ContentType,
		},
	})
}
