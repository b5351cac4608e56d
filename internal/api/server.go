package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/wkmg/rfp-radar/internal/ai"
	"github.com/wkmg/rfp-radar/internal/auth"
	"github.com/wkmg/rfp-radar/internal/db"
	"github.com/wkmg/rfp-radar/internal/ingest"
	"github.com/wkmg/rfp-radar/internal/proposals"
)

// Server is the dashboard API: browse scored announcements, trigger runs,
// request go/no-go analyses.
type Server struct {
	Store       *db.Store
	AuthService *auth.Service
	Echo        *echo.Echo
	DB          *pgxpool.Pool
	AI          *ai.OpenAIClient
	Pipeline    *ingest.Pipeline
	Matcher     *proposals.Matcher

	jobMu      sync.Mutex
	runningJob *backgroundJob
}

type backgroundJob struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"` // running, completed, failed
	StartedAt time.Time          `json:"started_at"`
	EndedAt   time.Time          `json:"ended_at,omitempty"`
	Result    any                `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
	Cancel    context.CancelFunc `json:"-"`
}

var (
	adminSecretOnce    sync.Once
	adminSecretRuntime string
	adminSecretErr     error
)

func NewServer(pool *pgxpool.Pool, pipeline *ingest.Pipeline, aiClient *ai.OpenAIClient) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	allowedOrigins := []string{"http://localhost:4200"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Admin-Secret"},
	}))

	store := db.NewStore(pool)
	s := &Server{
		DB:          pool,
		Store:       store,
		AuthService: auth.NewService(pool),
		Echo:        e,
		AI:          aiClient,
		Pipeline:    pipeline,
		Matcher:     &proposals.Matcher{Store: store, Embedder: aiClient},
	}
	s.routes()
	return s
}

// Start blocks serving on the given port.
func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)

	api := s.Echo.Group("/api/v1")
	api.GET("/bids", s.handleListBids)
	api.GET("/bids/:fingerprint", s.handleGetBid)
	api.GET("/stats", s.handleStats)
	api.GET("/sites", s.handleSites)

	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	watch := api.Group("/watch")
	watch.Use(auth.Middleware)
	watch.POST("/:fingerprint", s.handleWatch)
	watch.DELETE("/:fingerprint", s.handleUnwatch)
	watch.GET("", s.handleListWatched)

	admin := api.Group("/admin")
	admin.Use(s.adminMiddleware)
	admin.POST("/run", s.handleTriggerRun)
	admin.GET("/job/:id", s.handleJobStatus)
	admin.POST("/gonogo/:fingerprint", s.handleGoNoGo)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleListBids(c echo.Context) error {
	params := db.ListParams{
		Grade:          c.QueryParam("grade"),
		Source:         c.QueryParam("source"),
		Agency:         c.QueryParam("agency"),
		ExcludeExpired: c.QueryParam("include_expired") != "true",
		Limit:          50,
	}
	if v, err := strconv.Atoi(c.QueryParam("min_total")); err == nil && v > 0 {
		params.MinTotal = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 200 {
		params.Limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v >= 0 {
		params.Offset = v
	}

	bids, err := s.Store.ListScored(c.Request().Context(), params)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"bids": bids, "count": len(bids)})
}

func (s *Server) handleGetBid(c echo.Context) error {
	sb, err := s.Store.GetByFingerprint(c.Request().Context(), c.Param("fingerprint"))
	if err == db.ErrNotFound {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "bid not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, sb)
}

func (s *Server) handleStats(c echo.Context) error {
	stats, err := s.Store.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleSites(c echo.Context) error {
	if s.Pipeline == nil || s.Pipeline.Registry == nil {
		return c.JSON(http.StatusOK, map[string]any{"sites": []any{}})
	}
	return c.JSON(http.StatusOK, map[string]any{"sites": s.Pipeline.Registry.Sites})
}

func (s *Server) handleSignup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	resp, err := s.AuthService.Signup(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrUserExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	resp, err := s.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrInvalidCreds {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleWatch(c echo.Context) error {
	userID, err := auth.UserIDFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	}
	if err := s.AuthService.WatchBid(c.Request().Context(), userID, c.Param("fingerprint")); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleUnwatch(c echo.Context) error {
	userID, err := auth.UserIDFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	}
	if err := s.AuthService.UnwatchBid(c.Request().Context(), userID, c.Param("fingerprint")); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListWatched(c echo.Context) error {
	userID, err := auth.UserIDFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	}
	fingerprints, err := s.AuthService.WatchedFingerprints(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	var bids []any
	for _, fp := range fingerprints {
		sb, err := s.Store.GetByFingerprint(c.Request().Context(), fp)
		if err != nil {
			continue
		}
		bids = append(bids, sb)
	}
	return c.JSON(http.StatusOK, map[string]any{"bids": bids, "count": len(bids)})
}

// handleTriggerRun starts a collection run in the background. Only one run
// may be in flight at a time.
func (s *Server) handleTriggerRun(c echo.Context) error {
	if s.Pipeline == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "pipeline not configured"})
	}

	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.Status == "running" {
		job := *s.runningJob
		s.jobMu.Unlock()
		return c.JSON(http.StatusConflict, map[string]any{"error": "a run is already in progress", "job": job})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	job := &backgroundJob{
		ID:        uuid.NewString(),
		Status:    "running",
		StartedAt: time.Now(),
		Cancel:    cancel,
	}
	s.runningJob = job
	s.jobMu.Unlock()

	go func() {
		defer cancel()
		rep, err := s.Pipeline.Run(ctx)

		s.jobMu.Lock()
		defer s.jobMu.Unlock()
		job.EndedAt = time.Now()
		if err != nil {
			job.Status = "failed"
			job.Error = err.Error()
			return
		}
		job.Status = "completed"
		job.Result = rep.Stats
	}()

	return c.JSON(http.StatusAccepted, job)
}

func (s *Server) handleJobStatus(c echo.Context) error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	if s.runningJob == nil || s.runningJob.ID != c.Param("id") {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}
	return c.JSON(http.StatusOK, s.runningJob)
}

// handleGoNoGo runs the archive-informed bid/no-bid analysis for one
// stored announcement.
func (s *Server) handleGoNoGo(c echo.Context) error {
	if s.AI == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "ai not configured"})
	}
	ctx := c.Request().Context()

	sb, err := s.Store.GetByFingerprint(ctx, c.Param("fingerprint"))
	if err == db.ErrNotFound {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "bid not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	matches, err := s.Matcher.TopK(ctx, sb.Bid.Title+" "+sb.Bid.Agency, 5)
	if err != nil {
		log.Printf("[API] Proposal match failed for %s: %v", sb.Bid.Fingerprint, err)
	}
	report, err := s.AI.AnalyzeGoNoGo(ctx, sb.Bid, proposals.Snippets(matches, 500))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"bid": sb, "analysis": report})
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret, err := adminSecret()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server admin configuration error"})
		}

		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader == secret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == secret {
				return next(c)
			}
		}
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

func adminSecret() (string, error) {
	adminSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
		if secret != "" {
			adminSecretRuntime = secret
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			adminSecretErr = fmt.Errorf("failed to generate ADMIN_SECRET fallback: %w", err)
			return
		}

		adminSecretRuntime = base64.RawURLEncoding.EncodeToString(buf)
		log.Print("[API] ADMIN_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if adminSecretErr != nil {
		return "", adminSecretErr
	}
	if adminSecretRuntime == "" {
		return "", fmt.Errorf("admin secret unavailable")
	}
	return adminSecretRuntime, nil
}
