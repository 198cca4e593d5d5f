package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/cv-optimizer/internal/capability"
	"github.com/jonathan/cv-optimizer/internal/db"
	"github.com/jonathan/cv-optimizer/internal/interview"
	"github.com/jonathan/cv-optimizer/internal/server/middleware"
)

// defaultQuestionCount is used when the request does not set questionCount (allowed range 1..15).
const defaultQuestionCount = 5

type interviewGenerateRequest struct {
	CVText         string `json:"cvText" validate:"required"`
	JobDescription string `json:"jobDescription" validate:"required"`
	TargetRole     string `json:"targetRole" validate:"max=200"`
	QuestionCount  *int   `json:"questionCount" validate:"omitempty,min=1,max=15"`
}

type interviewEvaluateRequest struct {
	SessionID  string `json:"sessionId" validate:"required,uuid"`
	QuestionID string `json:"questionId" validate:"required,uuid"`
	Answer     string `json:"answer" validate:"required"`
}

// interviewQuestionView is a question as shown before it is answered.
type interviewQuestionView struct {
	ID             uuid.UUID `json:"id"`
	QuestionNumber int       `json:"questionNumber"`
	QuestionType   string    `json:"questionType"`
	Question       string    `json:"question"`
	ExpectedTopics []string  `json:"expectedTopics"`
	Difficulty     string    `json:"difficulty"`
}

type interviewGenerateResponse struct {
	SessionID      uuid.UUID               `json:"sessionId"`
	TargetRole     string                  `json:"targetRole"`
	TotalQuestions int                     `json:"totalQuestions"`
	Questions      []interviewQuestionView `json:"questions"`
}

type interviewEvaluateResponse struct {
	*capability.AnswerEvaluation
	IsLastQuestion bool     `json:"isLastQuestion"`
	OverallScore   *float64 `json:"overallScore,omitempty"`
	AnsweredCount  int      `json:"answeredCount"`
	TotalQuestions int      `json:"totalQuestions"`
}

type interviewSessionResponse struct {
	Session   *db.InterviewSession   `json:"session"`
	Questions []db.InterviewQuestion `json:"questions"`
	Summary   *interview.Summary     `json:"summary"`
}

// handleInterviewGenerate creates a mock interview session from generated questions.
func (s *Server) handleInterviewGenerate(w http.ResponseWriter, r *http.Request) {
	var req interviewGenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	count := defaultQuestionCount
	if req.QuestionCount != nil {
		count = *req.QuestionCount
	}

	ctx, cancel := s.generationContext(r)
	defer cancel()
	result, err := s.advisor.InterviewQuestions(ctx, req.CVText, req.JobDescription, req.TargetRole, count)
	if err != nil {
		fail(w, r, err)
		return
	}

	session := &db.InterviewSession{
		UserID:         middleware.OptionalUserID(r),
		CVText:         req.CVText,
		JobDescription: req.JobDescription,
		TargetRole:     result.TargetRole,
		TotalQuestions: len(result.Questions),
	}
	// Questions are numbered by position; the model's own numbering may repeat or skip.
	questions := make([]db.InterviewQuestion, len(result.Questions))
	for i, q := range result.Questions {
		questions[i] = db.InterviewQuestion{
			QuestionNumber: i + 1,
			QuestionType:   string(q.QuestionType),
			Question:       q.Question,
			ExpectedTopics: q.ExpectedTopics,
			Difficulty:     string(q.Difficulty),
		}
	}

	sessionID, err := s.store.CreateInterviewSession(r.Context(), session, questions)
	if err != nil {
		fail(w, r, err)
		return
	}

	views := make([]interviewQuestionView, len(questions))
	for i, q := range questions {
		views[i] = interviewQuestionView{
			ID:             q.ID,
			QuestionNumber: q.QuestionNumber,
			QuestionType:   q.QuestionType,
			Question:       q.Question,
			ExpectedTopics: q.ExpectedTopics,
			Difficulty:     q.Difficulty,
		}
	}
	success(w, r, interviewGenerateResponse{
		SessionID:      sessionID,
		TargetRole:     session.TargetRole,
		TotalQuestions: session.TotalQuestions,
		Questions:      views,
	})
}

// handleInterviewEvaluate scores one answer and advances or completes the session.
func (s *Server) handleInterviewEvaluate(w http.ResponseWriter, r *http.Request) {
	var req interviewEvaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	sessionID := uuid.MustParse(req.SessionID)
	questionID := uuid.MustParse(req.QuestionID)

	session, err := s.loadSession(r, sessionID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if session.Status == db.StatusCompleted {
		fail(w, r, &ErrValidation{Message: "interview session is already completed"})
		return
	}

	question, err := s.store.GetInterviewQuestion(r.Context(), sessionID, questionID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if question == nil {
		fail(w, r, &ErrNotFound{Resource: "question"})
		return
	}
	if question.Answered() {
		fail(w, r, &ErrValidation{Field: "questionId", Message: "question is already answered"})
		return
	}

	ctx, cancel := s.generationContext(r)
	defer cancel()
	evaluation, err := s.advisor.EvaluateAnswer(ctx, question.Question, question.ExpectedTopics, req.Answer, session.CVText, session.JobDescription)
	if err != nil {
		fail(w, r, err)
		return
	}

	if err := s.store.SaveAnswer(r.Context(), questionID, db.AnswerRecord{
		Answer:       req.Answer,
		Score:        evaluation.Score,
		Feedback:     evaluation.Feedback,
		Strengths:    evaluation.Strengths,
		Improvements: evaluation.Improvements,
		SampleAnswer: evaluation.SampleAnswer,
	}); err != nil {
		if errors.Is(err, db.ErrAlreadyAnswered) {
			err = &ErrValidation{Field: "questionId", Message: "question is already answered"}
		}
		fail(w, r, err)
		return
	}

	// Scores are read after the save so concurrent answers all count toward completion.
	scores, err := s.answeredScores(r.Context(), sessionID)
	if err != nil {
		fail(w, r, err)
		return
	}
	progress := interview.Tally(scores, session.TotalQuestions)
	resp := interviewEvaluateResponse{
		AnswerEvaluation: evaluation,
		IsLastQuestion:   progress.IsLast,
		AnsweredCount:    progress.AnsweredCount,
		TotalQuestions:   progress.TotalQuestions,
	}
	if progress.IsLast {
		if err := s.store.CompleteInterviewSession(r.Context(), sessionID, progress.OverallScore); err != nil {
			fail(w, r, err)
			return
		}
		resp.OverallScore = &progress.OverallScore
	} else if err := s.store.AdvanceInterviewSession(r.Context(), sessionID, progress.AnsweredCount); err != nil {
		fail(w, r, err)
		return
	}
	success(w, r, resp)
}

// handleInterviewGet returns a session with its questions, and a summary once it is completed.
func (s *Server) handleInterviewGet(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(r.PathValue("sessionId"))
	if err != nil {
		fail(w, r, &ErrNotFound{Resource: "interview session"})
		return
	}
	session, err := s.loadSession(r, sessionID)
	if err != nil {
		fail(w, r, err)
		return
	}
	questions, err := s.store.ListInterviewQuestions(r.Context(), sessionID)
	if err != nil {
		fail(w, r, err)
		return
	}

	resp := interviewSessionResponse{Session: session, Questions: questions}
	if session.Status == db.StatusCompleted {
		var overall float64
		if session.OverallScore != nil {
			overall = *session.OverallScore
		}
		summary := interview.Summarize(overall, session.TotalQuestions, answersOf(questions))
		resp.Summary = &summary
	}
	success(w, r, resp)
}

// loadSession fetches a session visible to the caller. Sessions created while signed in
// are hidden from everyone else.
func (s *Server) loadSession(r *http.Request, id uuid.UUID) (*db.InterviewSession, error) {
	session, err := s.store.GetInterviewSession(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, &ErrNotFound{Resource: "interview session"}
	}
	if session.UserID != nil {
		caller := middleware.OptionalUserID(r)
		if caller == nil || *caller != *session.UserID {
			return nil, &ErrNotFound{Resource: "interview session"}
		}
	}
	return session, nil
}

func (s *Server) answeredScores(ctx context.Context, sessionID uuid.UUID) ([]float64, error) {
	questions, err := s.store.ListInterviewQuestions(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	var scores []float64
	for _, q := range questions {
		if q.Answered() {
			scores = append(scores, *q.Score)
		}
	}
	return scores, nil
}

func answersOf(questions []db.InterviewQuestion) []interview.Answer {
	var answers []interview.Answer
	for _, q := range questions {
		if !q.Answered() {
			continue
		}
		answers = append(answers, interview.Answer{
			QuestionType: capability.QuestionType(q.QuestionType),
			Score:        *q.Score,
			Strengths:    q.Strengths,
			Improvements: q.Improvements,
		})
	}
	return answers
}
