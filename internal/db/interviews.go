package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const questionColumns = `id, session_id, question_number, question_type, question, expected_topics, difficulty,
	user_answer, score, feedback, strengths, improvements, sample_answer, answered_at`

func scanQuestion(row pgx.Row, q *InterviewQuestion) error {
	return row.Scan(&q.ID, &q.SessionID, &q.QuestionNumber, &q.QuestionType, &q.Question, &q.ExpectedTopics,
		&q.Difficulty, &q.UserAnswer, &q.Score, &q.Feedback, &q.Strengths, &q.Improvements, &q.SampleAnswer,
		&q.AnsweredAt)
}

// CreateInterviewSession stores a session and its questions in one transaction.
// IDs are written back into s and questions.
func (db *DB) CreateInterviewSession(ctx context.Context, s *InterviewSession, questions []InterviewQuestion) (uuid.UUID, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if s.Status == "" {
		s.Status = StatusInProgress
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO interview_sessions (user_id, cv_text, job_description, target_role, total_questions,
		     current_question, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		s.UserID, s.CVText, s.JobDescription, s.TargetRole, s.TotalQuestions, s.CurrentQuestion, s.Status,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create interview session: %w", err)
	}

	for i := range questions {
		q := &questions[i]
		q.SessionID = s.ID
		err := tx.QueryRow(ctx,
			`INSERT INTO interview_questions (session_id, question_number, question_type, question,
			     expected_topics, difficulty)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id`,
			s.ID, q.QuestionNumber, q.QuestionType, q.Question, q.ExpectedTopics, q.Difficulty,
		).Scan(&q.ID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to create interview question %d: %w", q.QuestionNumber, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit interview session: %w", err)
	}
	return s.ID, nil
}

// GetInterviewSession retrieves a session by ID. It returns nil, nil when none exists.
func (db *DB) GetInterviewSession(ctx context.Context, id uuid.UUID) (*InterviewSession, error) {
	var s InterviewSession
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, cv_text, job_description, target_role, total_questions, current_question,
		        status, overall_score, created_at, completed_at
		 FROM interview_sessions WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.UserID, &s.CVText, &s.JobDescription, &s.TargetRole, &s.TotalQuestions,
		&s.CurrentQuestion, &s.Status, &s.OverallScore, &s.CreatedAt, &s.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get interview session: %w", err)
	}
	return &s, nil
}

// ListInterviewQuestions returns a session's questions in question order.
func (db *DB) ListInterviewQuestions(ctx context.Context, sessionID uuid.UUID) ([]InterviewQuestion, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM interview_questions WHERE session_id = $1 ORDER BY question_number`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interview questions: %w", err)
	}
	defer rows.Close()

	var questions []InterviewQuestion
	for rows.Next() {
		var q InterviewQuestion
		if err := scanQuestion(rows, &q); err != nil {
			return nil, fmt.Errorf("failed to scan interview question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list interview questions: %w", err)
	}
	return questions, nil
}

// GetInterviewQuestion retrieves a question of a session. It returns nil, nil when the
// question does not exist or belongs to another session.
func (db *DB) GetInterviewQuestion(ctx context.Context, sessionID, questionID uuid.UUID) (*InterviewQuestion, error) {
	var q InterviewQuestion
	err := scanQuestion(db.pool.QueryRow(ctx,
		`SELECT `+questionColumns+`
		 FROM interview_questions WHERE id = $1 AND session_id = $2`,
		questionID, sessionID,
	), &q)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get interview question: %w", err)
	}
	return &q, nil
}

// ErrAlreadyAnswered is returned by SaveAnswer when the question already holds an answer.
var ErrAlreadyAnswered = errors.New("interview question is already answered")

// SaveAnswer stores the evaluated answer to a question that has not been answered yet.
func (db *DB) SaveAnswer(ctx context.Context, questionID uuid.UUID, a AnswerRecord) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE interview_questions
		 SET user_answer = $1, score = $2, feedback = $3, strengths = $4, improvements = $5,
		     sample_answer = $6, answered_at = NOW()
		 WHERE id = $7 AND answered_at IS NULL`,
		a.Answer, a.Score, a.Feedback, StringArray(a.Strengths), StringArray(a.Improvements), a.SampleAnswer, questionID,
	)
	if err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM interview_questions WHERE id = $1)`, questionID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}
	if exists {
		return ErrAlreadyAnswered
	}
	return fmt.Errorf("interview question not found: %s", questionID)
}

// AdvanceInterviewSession records how many questions have been answered.
func (db *DB) AdvanceInterviewSession(ctx context.Context, id uuid.UUID, currentQuestion int) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE interview_sessions SET current_question = GREATEST(current_question, $1) WHERE id = $2`,
		currentQuestion, id,
	)
	if err != nil {
		return fmt.Errorf("failed to advance interview session: %w", err)
	}
	return nil
}

// CompleteInterviewSession marks a session completed with its overall score.
// Completing an already completed session leaves it unchanged.
func (db *DB) CompleteInterviewSession(ctx context.Context, id uuid.UUID, overallScore float64) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE interview_sessions
		 SET status = $1, overall_score = $2, current_question = total_questions, completed_at = NOW()
		 WHERE id = $3 AND status <> $1`,
		StatusCompleted, overallScore, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete interview session: %w", err)
	}
	return nil
}
