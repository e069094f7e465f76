package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobbuddy/career-assistant/internal/models"
	"jobbuddy/career-assistant/internal/services"
)

type analyzeFixture struct {
	app      *fiber.App
	docs     *memoryDocumentRepo
	analyses *memoryAnalysisRepo
	worker   *recordingWorker
	analyzer *stubAnalyzer
}

func newAnalyzeFixture(t *testing.T, maxFileSize int64) *analyzeFixture {
	t.Helper()
	f := &analyzeFixture{
		docs:     newMemoryDocumentRepo(),
		analyses: newMemoryAnalysisRepo(),
		worker:   &recordingWorker{},
	}
	f.analyzer = &stubAnalyzer{repo: f.analyses}

	storage := services.NewStorageService(t.TempDir(), services.AllowedResumeExtensions)
	handler := NewAnalyzeHandler(f.docs, f.analyses, storage, f.analyzer, f.worker, maxFileSize)

	f.app = fiber.New()
	f.app.Post("/analyze", handler.HandleAnalyze)
	return f
}

func TestHandleAnalyze_Queued(t *testing.T) {
	f := newAnalyzeFixture(t, 1<<20)

	req := multipartRequest(t, "/analyze", map[string]string{"job_description": "  Go developer  "}, "resumeFile", "jane.txt", []byte("Jane Doe\nSkills: Go"))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	var body models.AnalyzeResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, string(models.StatusQueued), body.Status)
	require.NotNil(t, body.Document)
	assert.Equal(t, "jane.txt", body.Document.OriginalName)

	id := uuid.MustParse(body.ID)
	require.Equal(t, []uuid.UUID{id}, f.worker.jobs)

	stored, err := f.analyses.FindByID(req.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "Go developer", stored.JobDescription)
	assert.Len(t, f.docs.docs, 1)
}

func TestHandleAnalyze_Wait(t *testing.T) {
	f := newAnalyzeFixture(t, 1<<20)

	req := multipartRequest(t, "/analyze?wait=true", nil, "resumeFile", "jane.txt", []byte("Jane Doe"))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body models.AnalysisResultResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, string(models.StatusCompleted), body.Status)
	require.NotNil(t, body.Result)
	require.NotNil(t, body.Result.ATSScore)
	assert.Equal(t, 7.0, *body.Result.ATSScore)
	assert.False(t, body.Result.HasJobDescription)
	assert.Empty(t, f.worker.jobs)
}

func TestHandleAnalyze_WaitIsNeverQueued(t *testing.T) {
	f := newAnalyzeFixture(t, 1<<20)

	req := multipartRequest(t, "/analyze?wait=true", nil, "resumeFile", "jane.txt", []byte("Jane Doe"))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, []models.AnalysisStatus{models.StatusProcessing}, f.analyzer.seen)
	pending, err := f.analyses.FindPendingJobs(req.Context(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestHandleAnalyze_WaitFailure(t *testing.T) {
	f := newAnalyzeFixture(t, 1<<20)
	f.analyzer.err = errors.New("no text content found")

	req := multipartRequest(t, "/analyze?wait=true", nil, "resumeFile", "jane.txt", []byte("Jane Doe"))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, string(models.StatusFailed), body["status"])
	assert.Contains(t, body["error"], "no text content")
}

func TestHandleAnalyze_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		fileField  string
		filename   string
		content    []byte
		wantStatus int
	}{
		{name: "Missing file", wantStatus: http.StatusBadRequest},
		{name: "Unsupported extension", fileField: "resumeFile", filename: "resume.exe", content: []byte("MZ"), wantStatus: http.StatusBadRequest},
		{name: "Too large", fileField: "resumeFile", filename: "resume.txt", content: make([]byte, 64), wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAnalyzeFixture(t, 32)

			req := multipartRequest(t, "/analyze", map[string]string{"job_description": "x"}, tt.fileField, tt.filename, tt.content)
			resp, err := f.app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body map[string]string
			decodeBody(t, resp, &body)
			assert.NotEmpty(t, body["error"])
			assert.Empty(t, f.analyses.analyses)
			assert.Empty(t, f.worker.jobs)
		})
	}
}
