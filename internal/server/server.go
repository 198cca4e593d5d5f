package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/cv-optimizer/internal/advisor"
	"github.com/jonathan/cv-optimizer/internal/config"
	"github.com/jonathan/cv-optimizer/internal/db"
	"github.com/jonathan/cv-optimizer/internal/fetch"
	"github.com/jonathan/cv-optimizer/internal/llm"
	"github.com/jonathan/cv-optimizer/internal/outline"
	"github.com/jonathan/cv-optimizer/internal/render"
	"github.com/jonathan/cv-optimizer/internal/schemas"
	"github.com/jonathan/cv-optimizer/internal/server/middleware"
	"github.com/jonathan/cv-optimizer/internal/server/ratelimit"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds graceful shutdown once the run context is cancelled.
const shutdownTimeout = 30 * time.Second

// PostingImporter loads job postings from a URL.
type PostingImporter interface {
	Import(ctx context.Context, url string) (*fetch.Posting, error)
}

// PDFRenderer turns CV text into a PDF.
type PDFRenderer interface {
	Render(ctx context.Context, text string) ([]byte, error)
}

// Deps are the collaborators of a Server.
// Closer, when set, is closed after the HTTP server stops.
type Deps struct {
	Store        Store
	Advisor      *advisor.Service
	Renderer     PDFRenderer
	Importer     PostingImporter
	Limiter      *ratelimit.Limiter
	JWT          *JWTService
	Passwords    *config.PasswordConfig
	Logger       zerolog.Logger
	CORSOrigin   string
	CookieSecure bool
	LLMTimeout   time.Duration
	Closer       io.Closer
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       Store
	advisor     *advisor.Service
	renderer    PDFRenderer
	importer    PostingImporter
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	logger      zerolog.Logger
	corsOrigin  string
	llmTimeout  time.Duration
	closers     []func()
}

// New connects to the database, applies the schema and wires the production collaborators.
func New(ctx context.Context, cfg *config.ServerConfig, logger zerolog.Logger) (*Server, error) {
	if err := schemas.LoadAll(); err != nil {
		return nil, fmt.Errorf("failed to load output schemas: %w", err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	llmConfig := llm.ConfigFromEnv()
	pool := llm.NewClientPool(llm.NewFactory(llmConfig))
	invoker := llm.NewInvoker(llm.EnvCredentials{}, llmConfig, pool, logger)
	if !invoker.Configured() {
		logger.Warn().Msg("no model provider credential set, generation endpoints will fail")
	}

	s := NewWithDeps(Deps{
		Store:        database,
		Advisor:      advisor.New(invoker),
		Renderer:     render.NewRenderer(outline.HeuristicParser{}, render.NewChromePrinter()),
		Importer:     fetch.NewImporter(database, fetch.NewBrowser(), logger),
		Limiter:      ratelimit.NewLimiter(ratelimit.LoadConfig()),
		JWT:          NewJWTService(jwtConfig),
		Passwords:    passwordConfig,
		Logger:       logger,
		CORSOrigin:   cfg.CORSOrigin,
		CookieSecure: cfg.CookieSecure,
		LLMTimeout:   cfg.LLMTimeout,
		Closer:       pool,
	})
	s.closers = append(s.closers, database.Close)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // generation and PDF printing are slow
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// NewWithDeps builds a server around the given collaborators without touching the network.
func NewWithDeps(d Deps) *Server {
	if d.Limiter == nil {
		d.Limiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}
	if d.CORSOrigin == "" {
		d.CORSOrigin = config.DefaultCORSOrigin
	}
	if d.LLMTimeout <= 0 {
		d.LLMTimeout = config.DefaultLLMTimeout
	}

	s := &Server{
		store:       d.Store,
		advisor:     d.Advisor,
		renderer:    d.Renderer,
		importer:    d.Importer,
		rateLimiter: d.Limiter,
		jwtService:  d.JWT,
		userService: NewUserService(d.Store, d.Passwords),
		logger:      d.Logger,
		corsOrigin:  d.CORSOrigin,
		llmTimeout:  d.LLMTimeout,
	}
	s.authHandler = NewAuthHandler(s.userService, d.JWT, d.CookieSecure)
	if d.Closer != nil {
		closer := d.Closer
		s.closers = append(s.closers, func() {
			if err := closer.Close(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to close dependency")
			}
		})
	}
	s.handler = s.withRateLimit(s.withLogging(s.withCORS(s.routes())))
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	optional := middleware.OptionalAuth(s.jwtService.AsTokenValidator())
	required := middleware.RequireAuth(s.jwtService.AsTokenValidator())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Generation endpoints attach the user when a session is present.
	mux.Handle("POST /api/optimize", optional(http.HandlerFunc(s.handleOptimize)))
	mux.Handle("POST /api/analyze-job", optional(http.HandlerFunc(s.handleAnalyzeJob)))
	mux.Handle("POST /api/cover-letter", optional(http.HandlerFunc(s.handleCoverLetter)))
	mux.Handle("POST /api/skill-gap", optional(http.HandlerFunc(s.handleSkillGap)))
	mux.Handle("POST /api/compare-jobs", optional(http.HandlerFunc(s.handleCompareJobs)))

	// Mock interviews
	mux.Handle("POST /api/interview/generate", optional(http.HandlerFunc(s.handleInterviewGenerate)))
	mux.Handle("POST /api/interview/evaluate", optional(http.HandlerFunc(s.handleInterviewEvaluate)))
	mux.Handle("GET /api/interview/{sessionId}", optional(http.HandlerFunc(s.handleInterviewGet)))

	// LinkedIn
	mux.Handle("POST /api/linkedin/parse", optional(http.HandlerFunc(s.handleLinkedInParse)))
	mux.Handle("POST /api/linkedin/manual", optional(http.HandlerFunc(s.handleLinkedInManual)))
	mux.Handle("POST /api/linkedin/merge", optional(http.HandlerFunc(s.handleLinkedInMerge)))

	// History
	mux.Handle("GET /api/history", required(http.HandlerFunc(s.handleHistoryList)))
	mux.Handle("DELETE /api/history", required(http.HandlerFunc(s.handleHistoryDelete)))

	// Documents
	mux.HandleFunc("POST /api/parse-document", s.handleParseDocument)
	mux.HandleFunc("POST /api/generate-pdf", s.handleGeneratePDF)
	mux.HandleFunc("POST /api/job-posting/fetch", s.handleFetchJobPosting)
	mux.HandleFunc("POST /api/outline", s.handleOutline)

	// Auth
	mux.HandleFunc("POST /api/auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", s.authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", s.authHandler.Logout)
	mux.Handle("GET /api/auth/me", required(http.HandlerFunc(s.authHandler.Me)))
	mux.Handle("POST /api/auth/password", required(http.HandlerFunc(s.authHandler.UpdatePassword)))

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.httpServer == nil {
		return errors.New("server has no listener configured")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.Close()
	s.logger.Info().Msg("server stopped")
	return err
}

// Close stops the rate limiter and releases the collaborators owned by the server.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if s.corsOrigin != "*" {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// withLogging attaches a request-scoped logger and logs each completed request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLogger := s.logger.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Logger()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(reqLogger.WithContext(r.Context())))

		reqLogger.Info().
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"success":   false,
		"error":     "rate limit exceeded, please try again later",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"resetAt":   info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		response["retryAfter"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn().
		Str("client", s.extractClientID(r)).
		Str("path", r.URL.Path).
		Int("limit", info.Limit).
		Time("reset", info.ResetTime).
		Msg("rate limit exceeded")

	jsonResponse(w, http.StatusTooManyRequests, response)
}
