package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jobbuddy/career-assistant/internal/models"
	"jobbuddy/career-assistant/internal/parser"
	"jobbuddy/career-assistant/internal/repositories"
	"jobbuddy/career-assistant/internal/services"
)

type memoryDocumentRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]models.Document
}

func newMemoryDocumentRepo() *memoryDocumentRepo {
	return &memoryDocumentRepo{docs: map[uuid.UUID]models.Document{}}
}

func (r *memoryDocumentRepo) Create(_ context.Context, d *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[d.ID] = *d
	return nil
}

func (r *memoryDocumentRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &d, nil
}

func (r *memoryDocumentRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Document, error) {
	var out []models.Document
	for _, id := range ids {
		if d, err := r.FindByID(ctx, id); err == nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *memoryDocumentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

type memoryAnalysisRepo struct {
	mu       sync.Mutex
	analyses map[uuid.UUID]models.Analysis
}

func newMemoryAnalysisRepo() *memoryAnalysisRepo {
	return &memoryAnalysisRepo{analyses: map[uuid.UUID]models.Analysis{}}
}

func (r *memoryAnalysisRepo) Create(_ context.Context, a *models.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses[a.ID] = *a
	return nil
}

func (r *memoryAnalysisRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &a, nil
}

func (r *memoryAnalysisRepo) modify(id uuid.UUID, fn func(a *models.Analysis)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[id]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(&a)
	r.analyses[id] = a
	return nil
}

func (r *memoryAnalysisRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.AnalysisStatus) error {
	return r.modify(id, func(a *models.Analysis) { a.Status = status })
}

func (r *memoryAnalysisRepo) UpdateResult(_ context.Context, id uuid.UUID, d *repositories.AnalysisUpdateData) error {
	return r.modify(id, func(a *models.Analysis) {
		a.Status = models.StatusCompleted
		a.Strengths = d.Result.Strengths
		a.ATSScore = d.Result.ATSScore
		a.ATSPercentage = d.Result.ATSPercentage
		a.ExtractedText = d.ExtractedText
		a.RawResponse = d.RawResponse
	})
}

func (r *memoryAnalysisRepo) UpdateError(_ context.Context, id uuid.UUID, msg string) error {
	return r.modify(id, func(a *models.Analysis) {
		a.Status = models.StatusFailed
		a.ErrorMessage = &msg
	})
}

func (r *memoryAnalysisRepo) FindPendingJobs(_ context.Context, limit int) ([]models.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []models.Analysis
	for _, a := range r.analyses {
		if a.Status == models.StatusQueued && len(pending) < limit {
			pending = append(pending, a)
		}
	}
	return pending, nil
}

func (r *memoryAnalysisRepo) ListCompleted(context.Context, int) ([]models.Analysis, error) {
	return nil, nil
}

type recordingWorker struct {
	mu   sync.Mutex
	jobs []uuid.UUID
}

func (w *recordingWorker) Start(context.Context) {}
func (w *recordingWorker) Stop()                 {}

func (w *recordingWorker) EnqueueJob(id uuid.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.jobs = append(w.jobs, id)
	return true
}

// stubAnalyzer completes or fails analyses without calling a model.
type stubAnalyzer struct {
	repo *memoryAnalysisRepo
	err  error
	// seen holds the stored status of each analysis when analysis began.
	seen []models.AnalysisStatus
}

func (s *stubAnalyzer) AnalyzeResume(ctx context.Context, id uuid.UUID) error {
	if a, err := s.repo.FindByID(ctx, id); err == nil {
		s.seen = append(s.seen, a.Status)
	}
	if s.err != nil {
		s.repo.UpdateError(ctx, id, s.err.Error())
		return s.err
	}
	score, pct := 7.0, 70
	return s.repo.UpdateResult(ctx, id, &repositories.AnalysisUpdateData{
		Result:        parser.ResumeAnalysis{Strengths: "- Clear", ATSScore: &score, ATSPercentage: &pct},
		ExtractedText: "resume text",
		RawResponse:   "[ATS_SCORE]\nATS Score: 7/10",
	})
}

type mockChatService struct {
	mock.Mock
}

func (m *mockChatService) Send(ctx context.Context, userID, message string) (string, error) {
	args := m.Called(ctx, userID, message)
	return args.String(0), args.Error(1)
}

func (m *mockChatService) Reset(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockInterviewService struct {
	mock.Mock
}

func (m *mockInterviewService) Start(ctx context.Context, in services.StartInterviewInput) (*models.Interview, error) {
	args := m.Called(ctx, in)
	interview, _ := args.Get(0).(*models.Interview)
	return interview, args.Error(1)
}

func (m *mockInterviewService) SubmitAnswer(ctx context.Context, id uuid.UUID, in services.AnswerInput) (*models.AnswerResponse, error) {
	args := m.Called(ctx, id, in)
	resp, _ := args.Get(0).(*models.AnswerResponse)
	return resp, args.Error(1)
}

func (m *mockInterviewService) Summarize(ctx context.Context, id uuid.UUID) (*models.SummaryResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*models.SummaryResponse)
	return resp, args.Error(1)
}

func (m *mockInterviewService) Get(ctx context.Context, id uuid.UUID) (*models.Interview, error) {
	args := m.Called(ctx, id)
	interview, _ := args.Get(0).(*models.Interview)
	return interview, args.Error(1)
}

func multipartRequest(t *testing.T, target string, fields map[string]string, fileField, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
