package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cv-optimizer/internal/advisor"
	"github.com/jonathan/cv-optimizer/internal/capability"
	"github.com/jonathan/cv-optimizer/internal/config"
	"github.com/jonathan/cv-optimizer/internal/db"
	"github.com/jonathan/cv-optimizer/internal/fetch"
	"github.com/jonathan/cv-optimizer/internal/prompts"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memStore is an in-memory Store.
type memStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*db.User
	postings      []db.JobPosting
	optimizations map[uuid.UUID]*db.Optimization
	coverLetters  []db.CoverLetter
	skillGaps     []db.SkillGap
	sessions      map[uuid.UUID]*db.InterviewSession
	questions     map[uuid.UUID]*db.InterviewQuestion
	profiles      []db.LinkedInProfile
	pages         map[string]*db.FetchedPage
	// historyErr makes every history and profile write fail.
	historyErr error
	clock      time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[uuid.UUID]*db.User{},
		optimizations: map[uuid.UUID]*db.Optimization{},
		sessions:      map[uuid.UUID]*db.InterviewSession{},
		questions:     map[uuid.UUID]*db.InterviewQuestion{},
		pages:         map[string]*db.FetchedPage{},
		clock:         time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so ordering by creation time is deterministic.
func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) CreateUser(_ context.Context, name, email, passwordHash string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return uuid.Nil, fmt.Errorf("duplicate email %s", email)
		}
	}
	now := m.tick()
	u := &db.User{ID: uuid.New(), Name: name, Email: email, PasswordHash: passwordHash, PasswordSet: passwordHash != "", CreatedAt: now, UpdatedAt: now}
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *memStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := m.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (m *memStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user not found: %s", id)
	}
	u.PasswordHash = passwordHash
	u.PasswordSet = true
	return nil
}

func (m *memStore) CreateJobPosting(_ context.Context, p *db.JobPosting) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.historyErr != nil {
		return uuid.Nil, m.historyErr
	}
	p.ID = uuid.New()
	p.CreatedAt = m.tick()
	m.postings = append(m.postings, *p)
	return p.ID, nil
}

func (m *memStore) CreateOptimization(_ context.Context, o *db.Optimization) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.historyErr != nil {
		return uuid.Nil, m.historyErr
	}
	o.ID = uuid.New()
	o.CreatedAt = m.tick()
	cp := *o
	m.optimizations[o.ID] = &cp
	return o.ID, nil
}

func (m *memStore) posting(id *uuid.UUID) *db.JobPosting {
	if id == nil {
		return nil
	}
	for i := range m.postings {
		if m.postings[i].ID == *id {
			return &m.postings[i]
		}
	}
	return nil
}

func (m *memStore) ListOptimizationsByUser(_ context.Context, userID uuid.UUID) ([]db.HistoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := []db.HistoryItem{}
	for _, o := range m.optimizations {
		if o.UserID == nil || *o.UserID != userID {
			continue
		}
		item := db.HistoryItem{
			ID:              o.ID,
			TargetRole:      o.TargetRole,
			ATSScoreBefore:  o.ATSScoreBefore,
			ATSScoreAfter:   o.ATSScoreAfter,
			CreatedAt:       o.CreatedAt,
			OptimizedCV:     o.OptimizedCV,
			OriginalCV:      o.OriginalCV,
			MatchedKeywords: o.MatchedKeywords,
			AddedKeywords:   o.AddedKeywords,
			MissingSkills:   o.MissingSkills,
			Improvements:    o.Improvements,
		}
		if p := m.posting(o.JobPostingID); p != nil {
			if item.TargetRole == "" {
				item.TargetRole = p.Title
			}
			item.Company = p.Company
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (m *memStore) DeleteOptimizationForUser(_ context.Context, id, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.optimizations[id]
	if !ok || o.UserID == nil || *o.UserID != userID {
		return false, nil
	}
	delete(m.optimizations, id)
	return true, nil
}

func (m *memStore) SaveCoverLetter(_ context.Context, c *db.CoverLetter) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.historyErr != nil {
		return uuid.Nil, m.historyErr
	}
	c.ID = uuid.New()
	c.CreatedAt = m.tick()
	m.coverLetters = append(m.coverLetters, *c)
	return c.ID, nil
}

func (m *memStore) SaveSkillGaps(_ context.Context, gaps []db.SkillGap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.historyErr != nil {
		return m.historyErr
	}
	for _, g := range gaps {
		g.ID = uuid.New()
		g.CreatedAt = m.tick()
		m.skillGaps = append(m.skillGaps, g)
	}
	return nil
}

func (m *memStore) CreateInterviewSession(_ context.Context, s *db.InterviewSession, questions []db.InterviewQuestion) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.New()
	s.CreatedAt = m.tick()
	if s.Status == "" {
		s.Status = db.StatusInProgress
	}
	cp := *s
	m.sessions[s.ID] = &cp
	for i := range questions {
		questions[i].ID = uuid.New()
		questions[i].SessionID = s.ID
		q := questions[i]
		m.questions[q.ID] = &q
	}
	return s.ID, nil
}

func (m *memStore) GetInterviewSession(_ context.Context, id uuid.UUID) (*db.InterviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) ListInterviewQuestions(_ context.Context, sessionID uuid.UUID) ([]db.InterviewQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.InterviewQuestion{}
	for _, q := range m.questions {
		if q.SessionID == sessionID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionNumber < out[j].QuestionNumber })
	return out, nil
}

func (m *memStore) GetInterviewQuestion(_ context.Context, sessionID, questionID uuid.UUID) (*db.InterviewQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[questionID]
	if !ok || q.SessionID != sessionID {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

func (m *memStore) SaveAnswer(_ context.Context, questionID uuid.UUID, a db.AnswerRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[questionID]
	if !ok {
		return fmt.Errorf("interview question not found: %s", questionID)
	}
	if q.Score != nil {
		return db.ErrAlreadyAnswered
	}
	now := m.tick()
	answer, score, feedback, sample := a.Answer, a.Score, a.Feedback, a.SampleAnswer
	q.UserAnswer = &answer
	q.Score = &score
	q.Feedback = &feedback
	q.SampleAnswer = &sample
	q.Strengths = a.Strengths
	q.Improvements = a.Improvements
	q.AnsweredAt = &now
	return nil
}

func (m *memStore) AdvanceInterviewSession(_ context.Context, id uuid.UUID, currentQuestion int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("interview session not found: %s", id)
	}
	s.CurrentQuestion = max(s.CurrentQuestion, currentQuestion)
	return nil
}

func (m *memStore) CompleteInterviewSession(_ context.Context, id uuid.UUID, overallScore float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("interview session not found: %s", id)
	}
	if s.Status == db.StatusCompleted {
		return nil
	}
	now := m.tick()
	s.Status = db.StatusCompleted
	s.CurrentQuestion = s.TotalQuestions
	s.OverallScore = &overallScore
	s.CompletedAt = &now
	return nil
}

func (m *memStore) SaveLinkedInProfile(_ context.Context, p *db.LinkedInProfile) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.historyErr != nil {
		return uuid.Nil, m.historyErr
	}
	p.ID = uuid.New()
	p.CreatedAt = m.tick()
	m.profiles = append(m.profiles, *p)
	return p.ID, nil
}

func (m *memStore) GetFetchedPage(_ context.Context, url string) (*db.FetchedPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pages[url]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) UpsertFetchedPage(_ context.Context, page *db.FetchedPage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *page
	m.pages[page.URL] = &cp
	return nil
}

var _ Store = (*memStore)(nil)

// cannedInvoker answers every capability with its fixture document.
type cannedInvoker struct {
	mu    sync.Mutex
	docs  map[capability.Capability]string
	err   error
	calls []capability.Capability
	// gate, when set, runs before each call outside the lock.
	gate func(capability.Capability)
}

func (c *cannedInvoker) Invoke(_ context.Context, capName capability.Capability, _ prompts.Pair) ([]byte, error) {
	if c.gate != nil {
		c.gate(capName)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, capName)
	if c.err != nil {
		return nil, c.err
	}
	return []byte(c.docs[capName]), nil
}

func loadFixtures(t *testing.T) map[capability.Capability]string {
	t.Helper()
	files := map[capability.Capability]string{
		capability.OptimizeCV:                 "optimize_cv.json",
		capability.AnalyzeJob:                 "analyze_job.json",
		capability.GenerateCoverLetter:        "cover_letter.json",
		capability.SkillGap:                   "skill_gap.json",
		capability.CompareJobs:                "compare_jobs.json",
		capability.GenerateInterviewQuestions: "interview_questions.json",
		capability.EvaluateInterviewAnswer:    "interview_evaluation.json",
		capability.ParseLinkedInProfile:       "linkedin_profile.json",
		capability.MergeProfiles:              "profile_merge.json",
	}
	docs := make(map[capability.Capability]string, len(files))
	for c, name := range files {
		data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "valid", name))
		require.NoError(t, err)
		docs[c] = string(data)
	}
	return docs
}

// fakeRenderer returns fixed PDF bytes.
type fakeRenderer struct {
	text string
	err  error
}

func (f *fakeRenderer) Render(_ context.Context, text string) ([]byte, error) {
	f.text = text
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

// fakeImporter returns a fixed posting for any URL.
type fakeImporter struct {
	err error
}

func (f *fakeImporter) Import(_ context.Context, url string) (*fetch.Posting, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &fetch.Posting{URL: url, Title: "Backend Engineer", Text: "We are hiring a Go engineer.", Platform: fetch.PlatformUnknown}, nil
}

// testEnv is a server wired to in-memory collaborators.
type testEnv struct {
	server   *Server
	handler  http.Handler
	store    *memStore
	invoker  *cannedInvoker
	renderer *fakeRenderer
	importer *fakeImporter
	jwt      *JWTService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemStore()
	invoker := &cannedInvoker{docs: loadFixtures(t)}
	renderer := &fakeRenderer{}
	importer := &fakeImporter{}
	jwtService := NewJWTService(&config.JWTConfig{Secret: testJWTSecret, ExpirationHours: config.DefaultSessionHours})

	s := NewWithDeps(Deps{
		Store:     store,
		Advisor:   advisor.New(invoker),
		Renderer:  renderer,
		Importer:  importer,
		JWT:       jwtService,
		Passwords: &config.PasswordConfig{BcryptCost: bcrypt.MinCost},
		Logger:    zerolog.Nop(),
	})
	t.Cleanup(s.Close)

	return &testEnv{
		server:   s,
		handler:  s.Handler(),
		store:    store,
		invoker:  invoker,
		renderer: renderer,
		importer: importer,
		jwt:      jwtService,
	}
}

// do sends a JSON request. A non-empty token is sent as a bearer credential.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns its token and id.
func (e *testEnv) register(t *testing.T, email string) (string, uuid.UUID) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Jane Doe", "email": email, "password": "correct-horse",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		User  User   `json:"user"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token, resp.User.ID
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}
