package handlers

import (
	"errors"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"jobbuddy/career-assistant/internal/models"
	"jobbuddy/career-assistant/internal/repositories"
	"jobbuddy/career-assistant/internal/services"
)

type InterviewHandler struct {
	interviewService services.InterviewService
	maxAudioSize     int64
}

func NewInterviewHandler(interviewService services.InterviewService, maxAudioSize int64) *InterviewHandler {
	return &InterviewHandler{
		interviewService: interviewService,
		maxAudioSize:     maxAudioSize,
	}
}

func (h *InterviewHandler) HandleStart(c *fiber.Ctx) error {
	var req models.StartInterviewRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	interview, err := h.interviewService.Start(c.UserContext(), services.StartInterviewInput{
		JobRole:       req.JobRole,
		InterviewType: req.InterviewType,
		PositionLevel: req.PositionLevel,
		NumQuestions:  req.NumQuestions,
	})
	if err != nil {
		return interviewError(c, err)
	}

	questions := make([]string, 0, len(interview.Questions))
	for _, q := range interview.Questions {
		questions = append(questions, q.Text)
	}

	return c.Status(fiber.StatusCreated).JSON(models.StartInterviewResponse{
		ID:            interview.ID.String(),
		InterviewType: string(interview.InterviewType),
		Questions:     questions,
	})
}

// HandleAnswer accepts either a multipart form with an "audio" recording or
// a form/JSON field "answer" holding the typed answer.
func (h *InterviewHandler) HandleAnswer(c *fiber.Ctx) error {
	interviewID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid interview ID format",
		})
	}

	in := services.AnswerInput{
		QuestionIndex: atoiOrZero(c.FormValue("question_index")),
		IsFollowUp:    c.FormValue("is_follow_up") == "true",
		FollowUpIndex: atoiOrZero(c.FormValue("follow_up_index")),
		Text:          c.FormValue("answer"),
	}

	if audio, err := c.FormFile("audio"); err == nil {
		if audio.Size > h.maxAudioSize {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": "Audio recording too large",
			})
		}

		f, err := audio.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to read audio recording",
			})
		}
		defer f.Close()

		if in.Audio, err = io.ReadAll(f); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to read audio recording",
			})
		}
		in.AudioMimeType = audio.Header.Get("Content-Type")
	} else if in.Text == "" && len(c.Body()) > 0 {
		var body struct {
			QuestionIndex int    `json:"question_index"`
			IsFollowUp    bool   `json:"is_follow_up"`
			FollowUpIndex int    `json:"follow_up_index"`
			Answer        string `json:"answer"`
		}
		if err := c.BodyParser(&body); err == nil {
			in.QuestionIndex = body.QuestionIndex
			in.IsFollowUp = body.IsFollowUp
			in.FollowUpIndex = body.FollowUpIndex
			in.Text = body.Answer
		}
	}

	resp, err := h.interviewService.SubmitAnswer(c.UserContext(), interviewID, in)
	if err != nil {
		return interviewError(c, err)
	}

	return c.JSON(resp)
}

func (h *InterviewHandler) HandleSummary(c *fiber.Ctx) error {
	interviewID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid interview ID format",
		})
	}

	summary, err := h.interviewService.Summarize(c.UserContext(), interviewID)
	if err != nil {
		return interviewError(c, err)
	}

	return c.JSON(summary)
}

func (h *InterviewHandler) HandleGet(c *fiber.Ctx) error {
	interviewID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid interview ID format",
		})
	}

	interview, err := h.interviewService.Get(c.UserContext(), interviewID)
	if err != nil {
		return interviewError(c, err)
	}

	return c.JSON(interview)
}

func interviewError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Interview not found"})
	case errors.Is(err, services.ErrInvalidQuestion):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrEmptyAnswer):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No answer received. Please type or record your answer."})
	case errors.Is(err, services.ErrUnsupportedFormat):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unsupported audio format"})
	case errors.Is(err, services.ErrService):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "The interview coach is unavailable right now"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
