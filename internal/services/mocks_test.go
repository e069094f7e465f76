package services

import (
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"jobbuddy/career-assistant/internal/models"
	"jobbuddy/career-assistant/internal/repositories"
)

type MockGemini struct {
	mock.Mock
}

func (m *MockGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	var v []float32
	if got := args.Get(0); got != nil {
		v = got.([]float32)
	}
	return v, args.Error(1)
}

func (m *MockGemini) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	args := m.Called(ctx, prompt, temperature)
	return args.String(0), args.Error(1)
}

func (m *MockGemini) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	args := m.Called(ctx, prompt, temperature, maxRetries)
	return args.String(0), args.Error(1)
}

func (m *MockGemini) GenerateFromMedia(ctx context.Context, prompt string, data []byte, mimeType string) (string, error) {
	args := m.Called(ctx, prompt, data, mimeType)
	return args.String(0), args.Error(1)
}

func (m *MockGemini) GenerateChat(ctx context.Context, systemPrompt string, history []ChatTurn) (string, error) {
	args := m.Called(ctx, systemPrompt, history)
	return args.String(0), args.Error(1)
}

type fakeAnalysisRepo struct {
	mu       sync.Mutex
	analyses map[uuid.UUID]*models.Analysis
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{analyses: map[uuid.UUID]*models.Analysis{}}
}

func (r *fakeAnalysisRepo) Create(_ context.Context, a *models.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.analyses[a.ID] = &cp
	return nil
}

func (r *fakeAnalysisRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAnalysisRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.AnalysisStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[id]
	if !ok {
		return repositories.ErrNotFound
	}
	a.Status = status
	return nil
}

func (r *fakeAnalysisRepo) UpdateResult(_ context.Context, id uuid.UUID, d *repositories.AnalysisUpdateData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[id]
	if !ok {
		return repositories.ErrNotFound
	}
	a.Status = models.StatusCompleted
	a.Strengths = d.Result.Strengths
	a.ATSScore = d.Result.ATSScore
	a.ATSPercentage = d.Result.ATSPercentage
	a.MatchScore = d.Result.MatchScore
	a.MatchPercentage = d.Result.MatchPercentage
	a.AreasToImprove = d.Result.AreasToImprove
	a.ATSIssues = d.Result.ATSIssues
	a.MissingSkills = d.Result.MissingSkills
	a.ExtractedText = d.ExtractedText
	a.RawResponse = d.RawResponse
	a.UsedFallback = d.UsedFallback
	a.ErrorMessage = nil
	return nil
}

func (r *fakeAnalysisRepo) UpdateError(_ context.Context, id uuid.UUID, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[id]
	if !ok {
		return repositories.ErrNotFound
	}
	a.Status = models.StatusFailed
	a.ErrorMessage = &msg
	return nil
}

func (r *fakeAnalysisRepo) FindPendingJobs(_ context.Context, limit int) ([]models.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Analysis
	for _, a := range r.analyses {
		if a.Status == models.StatusQueued && len(out) < limit {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAnalysisRepo) ListCompleted(_ context.Context, limit int) ([]models.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Analysis
	for _, a := range r.analyses {
		if a.Status == models.StatusCompleted && len(out) < limit {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeDocumentRepo struct {
	docs map[uuid.UUID]*models.Document
}

func newFakeDocumentRepo(docs ...*models.Document) *fakeDocumentRepo {
	r := &fakeDocumentRepo{docs: map[uuid.UUID]*models.Document{}}
	for _, d := range docs {
		r.docs[d.ID] = d
	}
	return r
}

func (r *fakeDocumentRepo) Create(_ context.Context, d *models.Document) error {
	r.docs[d.ID] = d
	return nil
}

func (r *fakeDocumentRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Document, error) {
	d, ok := r.docs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return d, nil
}

func (r *fakeDocumentRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Document, error) {
	var out []models.Document
	for _, id := range ids {
		if d, ok := r.docs[id]; ok {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.docs, id)
	return nil
}

type fakeChatRepo struct {
	mu       sync.Mutex
	messages []models.ChatMessage
}

func (r *fakeChatRepo) Append(_ context.Context, messages ...*models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range messages {
		r.messages = append(r.messages, *m)
	}
	return nil
}

func (r *fakeChatRepo) FindRecentByUser(_ context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ChatMessage
	for _, m := range r.messages {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *fakeChatRepo) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = slices.DeleteFunc(r.messages, func(m models.ChatMessage) bool {
		return m.UserID == userID
	})
	return nil
}

type fakeInterviewRepo struct {
	interviews map[uuid.UUID]*models.Interview
}

func newFakeInterviewRepo() *fakeInterviewRepo {
	return &fakeInterviewRepo{interviews: map[uuid.UUID]*models.Interview{}}
}

func (r *fakeInterviewRepo) Create(_ context.Context, i *models.Interview) error {
	r.interviews[i.ID] = i
	return nil
}

func (r *fakeInterviewRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Interview, error) {
	i, ok := r.interviews[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return i, nil
}

func (r *fakeInterviewRepo) question(id uuid.UUID) *models.InterviewQuestion {
	for _, i := range r.interviews {
		for qi := range i.Questions {
			if i.Questions[qi].ID == id {
				return &i.Questions[qi]
			}
		}
	}
	return nil
}

func (r *fakeInterviewRepo) UpdateQuestion(_ context.Context, q *models.InterviewQuestion) error {
	stored := r.question(q.ID)
	if stored == nil {
		return repositories.ErrNotFound
	}
	followUps := stored.FollowUps
	*stored = *q
	stored.FollowUps = followUps
	return nil
}

func (r *fakeInterviewRepo) AddFollowUp(_ context.Context, f *models.InterviewFollowUp) error {
	q := r.question(f.QuestionID)
	if q == nil {
		return repositories.ErrNotFound
	}
	q.FollowUps = append(q.FollowUps, *f)
	return nil
}

func (r *fakeInterviewRepo) UpdateFollowUp(_ context.Context, f *models.InterviewFollowUp) error {
	q := r.question(f.QuestionID)
	if q == nil {
		return repositories.ErrNotFound
	}
	for i := range q.FollowUps {
		if q.FollowUps[i].ID == f.ID {
			q.FollowUps[i] = *f
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeInterviewRepo) UpdateSummary(_ context.Context, id uuid.UUID, summary, condensed string) error {
	i, ok := r.interviews[id]
	if !ok {
		return repositories.ErrNotFound
	}
	i.Summary = summary
	i.CondensedSummary = condensed
	return nil
}

// dirStorage serves files that already exist in a directory.
type dirStorage struct {
	dir string
}

func (s *dirStorage) EnsureReady(context.Context) error { return nil }

func (s *dirStorage) SaveFile(context.Context, *multipart.FileHeader, string) (*StoredFile, error) {
	return nil, os.ErrInvalid
}

func (s *dirStorage) Fetch(_ context.Context, key string) (string, func(), error) {
	path := filepath.Join(s.dir, key)
	if _, err := os.Stat(path); err != nil {
		return "", nil, err
	}
	return path, func() {}, nil
}

func (s *dirStorage) DeleteFile(context.Context, string) error { return nil }
func (s *dirStorage) Driver() string                           { return "test" }

type recordingPublisher struct {
	mu     sync.Mutex
	events []AnalysisEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e AnalysisEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) statuses() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Status)
	}
	return out
}

type staticKnowledge struct {
	text string
	err  error
}

func (k staticKnowledge) Retrieve(context.Context, string, string, int) (string, error) {
	return k.text, k.err
}
