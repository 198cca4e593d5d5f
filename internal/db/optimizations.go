package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateJobPosting stores a posting and returns its ID.
func (db *DB) CreateJobPosting(ctx context.Context, p *JobPosting) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO job_postings (title, company, description, required_skills, preferred_skills, keywords)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		p.Title, p.Company, p.Description, p.RequiredSkills, p.PreferredSkills, p.Keywords,
	).Scan(&id, &p.CreatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create job posting: %w", err)
	}
	p.ID = id
	return id, nil
}

// GetJobPosting retrieves a posting by ID. It returns nil, nil when none exists.
func (db *DB) GetJobPosting(ctx context.Context, id uuid.UUID) (*JobPosting, error) {
	var p JobPosting
	err := db.pool.QueryRow(ctx,
		`SELECT id, title, company, description, required_skills, preferred_skills, keywords, created_at
		 FROM job_postings WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Title, &p.Company, &p.Description, &p.RequiredSkills, &p.PreferredSkills, &p.Keywords, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job posting: %w", err)
	}
	return &p, nil
}

// CreateOptimization stores an optimization and returns its ID.
func (db *DB) CreateOptimization(ctx context.Context, o *Optimization) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO optimizations (user_id, job_posting_id, original_cv, optimized_cv, target_role,
		     ats_score_before, ats_score_after, matched_keywords, added_keywords, missing_skills,
		     improvements, role_adaptations)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, created_at`,
		o.UserID, o.JobPostingID, o.OriginalCV, o.OptimizedCV, o.TargetRole,
		o.ATSScoreBefore, o.ATSScoreAfter, o.MatchedKeywords, o.AddedKeywords, o.MissingSkills,
		o.Improvements, o.RoleAdaptations,
	).Scan(&id, &o.CreatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create optimization: %w", err)
	}
	o.ID = id
	return id, nil
}

// ListOptimizationsByUser returns a user's optimizations, newest first.
// TargetRole falls back to the posting title when the optimization has none.
func (db *DB) ListOptimizationsByUser(ctx context.Context, userID uuid.UUID) ([]HistoryItem, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT o.id, COALESCE(NULLIF(o.target_role, ''), jp.title, ''), COALESCE(jp.company, ''),
		        o.ats_score_before, o.ats_score_after, o.created_at, o.optimized_cv, o.original_cv,
		        o.matched_keywords, o.added_keywords, o.missing_skills, o.improvements
		 FROM optimizations o
		 LEFT JOIN job_postings jp ON jp.id = o.job_posting_id
		 WHERE o.user_id = $1
		 ORDER BY o.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list optimizations: %w", err)
	}
	defer rows.Close()

	items := []HistoryItem{}
	for rows.Next() {
		var h HistoryItem
		if err := rows.Scan(&h.ID, &h.TargetRole, &h.Company, &h.ATSScoreBefore, &h.ATSScoreAfter,
			&h.CreatedAt, &h.OptimizedCV, &h.OriginalCV, &h.MatchedKeywords, &h.AddedKeywords,
			&h.MissingSkills, &h.Improvements); err != nil {
			return nil, fmt.Errorf("failed to scan optimization: %w", err)
		}
		items = append(items, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list optimizations: %w", err)
	}
	return items, nil
}

// DeleteOptimizationForUser deletes an optimization owned by userID.
// It reports false when no such optimization belongs to the user.
func (db *DB) DeleteOptimizationForUser(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM optimizations WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete optimization: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// SaveCoverLetter stores a cover letter and returns its ID.
func (db *DB) SaveCoverLetter(ctx context.Context, c *CoverLetter) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO cover_letters (user_id, job_posting_id, content, tone)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		c.UserID, c.JobPostingID, c.Content, c.Tone,
	).Scan(&id, &c.CreatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save cover letter: %w", err)
	}
	c.ID = id
	return id, nil
}

// SaveSkillGaps stores gaps in one batch.
func (db *DB) SaveSkillGaps(ctx context.Context, gaps []SkillGap) error {
	if len(gaps) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, g := range gaps {
		batch.Queue(
			`INSERT INTO skill_gaps (user_id, missing_skill, category, importance, learning_path, estimated_time)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			g.UserID, g.MissingSkill, g.Category, g.Importance, g.LearningPath, g.EstimatedTime,
		)
	}

	results := db.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()
	for i := range gaps {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to save skill gap %q: %w", gaps[i].MissingSkill, err)
		}
	}
	return nil
}

// ListSkillGapsByUser returns the gaps recorded for a user, newest first.
func (db *DB) ListSkillGapsByUser(ctx context.Context, userID uuid.UUID) ([]SkillGap, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, missing_skill, category, importance, learning_path, estimated_time, created_at
		 FROM skill_gaps WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list skill gaps: %w", err)
	}
	defer rows.Close()

	var gaps []SkillGap
	for rows.Next() {
		var g SkillGap
		if err := rows.Scan(&g.ID, &g.UserID, &g.MissingSkill, &g.Category, &g.Importance,
			&g.LearningPath, &g.EstimatedTime, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan skill gap: %w", err)
		}
		gaps = append(gaps, g)
	}
	return gaps, rows.Err()
}
