package fetch

import (
	"context"
	"time"

	"github.com/jonathan/cv-optimizer/internal/db"
	"github.com/rs/zerolog"
)

// DefaultCacheTTL is how long an imported posting is served from the store.
const DefaultCacheTTL = 24 * time.Hour

// PageStore persists imported postings by URL.
type PageStore interface {
	GetFetchedPage(ctx context.Context, url string) (*db.FetchedPage, error)
	UpsertFetchedPage(ctx context.Context, page *db.FetchedPage) error
}

// Posting is an imported job posting.
type Posting struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Platform  Platform  `json:"platform"`
	FromCache bool      `json:"fromCache"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Importer fetches postings, falling back to a headless browser for script-rendered pages.
// Store and Browser are optional.
type Importer struct {
	Options  *Options
	Store    PageStore
	Browser  HTMLRenderer
	CacheTTL time.Duration
	Logger   zerolog.Logger
	now      func() time.Time
}

// NewImporter creates an importer with default options.
func NewImporter(store PageStore, browser HTMLRenderer, logger zerolog.Logger) *Importer {
	return &Importer{
		Options:  DefaultOptions(),
		Store:    store,
		Browser:  browser,
		CacheTTL: DefaultCacheTTL,
		Logger:   logger,
		now:      time.Now,
	}
}

// Import returns the posting text at urlStr, using the store when a fresh copy exists.
func (im *Importer) Import(ctx context.Context, urlStr string) (*Posting, error) {
	if _, err := ValidateURL(urlStr); err != nil {
		return nil, err
	}
	platform := DetectPlatform(urlStr)

	if im.Store != nil {
		cached, err := im.Store.GetFetchedPage(ctx, urlStr)
		if err != nil {
			im.Logger.Warn().Err(err).Str("url", urlStr).Msg("fetched page lookup failed")
		} else if cached != nil && im.clock().Sub(cached.FetchedAt) < im.CacheTTL {
			return &Posting{
				URL:       cached.URL,
				Title:     cached.Title,
				Text:      cached.Text,
				Platform:  Platform(cached.Platform),
				FromCache: true,
				FetchedAt: cached.FetchedAt,
			}, nil
		}
	}

	result, err := URL(ctx, urlStr, im.Options)
	if err != nil {
		return nil, err
	}
	title, text, err := ExtractMainText(result.HTML, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to parse page", Cause: err}
	}

	if im.Browser != nil && (NeedsBrowser(platform) || ShouldUseBrowser(text)) {
		im.Logger.Debug().Str("url", urlStr).Int("text_length", len(text)).Msg("rendering posting in browser")
		html, err := im.Browser.RenderHTML(ctx, urlStr)
		if err != nil {
			im.Logger.Warn().Err(err).Str("url", urlStr).Msg("browser rendering failed, keeping HTTP result")
		} else if bTitle, bText, err := ExtractMainText(html, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...); err == nil && len(bText) > len(text) {
			title, text = bTitle, bText
		}
	}

	if text == "" {
		return nil, &Error{URL: urlStr, Message: "no job description found on page"}
	}

	posting := &Posting{
		URL:       urlStr,
		Title:     title,
		Text:      text,
		Platform:  platform,
		FetchedAt: im.clock(),
	}

	if im.Store != nil {
		page := &db.FetchedPage{
			URL:        urlStr,
			Title:      title,
			Text:       text,
			Platform:   string(platform),
			StatusCode: result.StatusCode,
			FetchedAt:  posting.FetchedAt,
		}
		if err := im.Store.UpsertFetchedPage(ctx, page); err != nil {
			im.Logger.Warn().Err(err).Str("url", urlStr).Msg("failed to cache fetched page")
		}
	}
	return posting, nil
}

func (im *Importer) clock() time.Time {
	if im.now == nil {
		return time.Now()
	}
	return im.now()
}
