package server

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/cv-optimizer/internal/db"
	"github.com/jonathan/cv-optimizer/internal/fetch"
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// HistoryStore persists generated optimizations, cover letters and skill gaps.
type HistoryStore interface {
	CreateJobPosting(ctx context.Context, p *db.JobPosting) (uuid.UUID, error)
	CreateOptimization(ctx context.Context, o *db.Optimization) (uuid.UUID, error)
	ListOptimizationsByUser(ctx context.Context, userID uuid.UUID) ([]db.HistoryItem, error)
	DeleteOptimizationForUser(ctx context.Context, id, userID uuid.UUID) (bool, error)
	SaveCoverLetter(ctx context.Context, c *db.CoverLetter) (uuid.UUID, error)
	SaveSkillGaps(ctx context.Context, gaps []db.SkillGap) error
}

// InterviewStore persists mock interview sessions.
type InterviewStore interface {
	CreateInterviewSession(ctx context.Context, s *db.InterviewSession, questions []db.InterviewQuestion) (uuid.UUID, error)
	GetInterviewSession(ctx context.Context, id uuid.UUID) (*db.InterviewSession, error)
	ListInterviewQuestions(ctx context.Context, sessionID uuid.UUID) ([]db.InterviewQuestion, error)
	GetInterviewQuestion(ctx context.Context, sessionID, questionID uuid.UUID) (*db.InterviewQuestion, error)
	SaveAnswer(ctx context.Context, questionID uuid.UUID, a db.AnswerRecord) error
	AdvanceInterviewSession(ctx context.Context, id uuid.UUID, currentQuestion int) error
	CompleteInterviewSession(ctx context.Context, id uuid.UUID, overallScore float64) error
}

// ProfileStore persists LinkedIn profiles.
type ProfileStore interface {
	SaveLinkedInProfile(ctx context.Context, p *db.LinkedInProfile) (uuid.UUID, error)
}

// Store is everything the handlers persist. *db.DB implements it.
type Store interface {
	UserStore
	HistoryStore
	InterviewStore
	ProfileStore
	fetch.PageStore
}

var _ Store = (*db.DB)(nil)
