package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveLinkedInProfile stores a profile and returns its ID.
func (db *DB) SaveLinkedInProfile(ctx context.Context, p *LinkedInProfile) (uuid.UUID, error) {
	experience, err := jsonList(p.Experience)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal experience: %w", err)
	}
	education, err := jsonList(p.Education)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal education: %w", err)
	}
	certifications, err := jsonList(p.Certifications)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal certifications: %w", err)
	}
	languages, err := jsonList(p.Languages)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal languages: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO linkedin_profiles (user_id, full_name, headline, location, summary, experience,
		     education, skills, certifications, languages, source_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at`,
		p.UserID, p.FullName, p.Headline, p.Location, p.Summary, experience,
		education, p.Skills, certifications, languages, p.SourceType,
	).Scan(&id, &p.CreatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save linkedin profile: %w", err)
	}
	p.ID = id
	return id, nil
}

// GetLinkedInProfile retrieves a profile by ID. It returns nil, nil when none exists.
func (db *DB) GetLinkedInProfile(ctx context.Context, id uuid.UUID) (*LinkedInProfile, error) {
	var p LinkedInProfile
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, full_name, headline, location, summary, experience, education, skills,
		        certifications, languages, source_type, created_at
		 FROM linkedin_profiles WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.UserID, &p.FullName, &p.Headline, &p.Location, &p.Summary, &p.Experience,
		&p.Education, &p.Skills, &p.Certifications, &p.Languages, &p.SourceType, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get linkedin profile: %w", err)
	}
	return &p, nil
}

// GetFetchedPage returns the cached posting for url. It returns nil, nil when none is cached.
func (db *DB) GetFetchedPage(ctx context.Context, url string) (*FetchedPage, error) {
	var p FetchedPage
	err := db.pool.QueryRow(ctx,
		`SELECT url, title, text, platform, status_code, fetched_at FROM fetched_pages WHERE url = $1`,
		url,
	).Scan(&p.URL, &p.Title, &p.Text, &p.Platform, &p.StatusCode, &p.FetchedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get fetched page: %w", err)
	}
	return &p, nil
}

// UpsertFetchedPage caches a posting, replacing any earlier copy of the same URL.
func (db *DB) UpsertFetchedPage(ctx context.Context, p *FetchedPage) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO fetched_pages (url, title, text, platform, status_code, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (url) DO UPDATE
		 SET title = $2, text = $3, platform = $4, status_code = $5, fetched_at = $6`,
		p.URL, p.Title, p.Text, p.Platform, p.StatusCode, p.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert fetched page: %w", err)
	}
	return nil
}
