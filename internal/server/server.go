package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/stoke/internal/award"
	"github.com/dukerupert/stoke/internal/handler"
	"github.com/dukerupert/stoke/internal/middleware"
	"github.com/dukerupert/stoke/internal/push"
	"github.com/dukerupert/stoke/internal/store"
	ws "github.com/dukerupert/stoke/internal/websocket"
)

// Config carries the optional pieces of server setup.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
}

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	authH         *handler.AuthHandler
	templateH     *handler.TemplateHandler
	goalH         *handler.GoalHandler
	entryH        *handler.EntryHandler
	milestoneH    *handler.MilestoneHandler
	rewardH       *handler.RewardHandler
	pointsH       *handler.PointsHandler
	pushH         *handler.PushHandler
	sessionStore  *store.SessionStore
	rateLimiter   *middleware.RateLimiter
	pushScheduler *push.Scheduler
	logger        *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	templateStore := store.NewTemplateStore(db)
	goalStore := store.NewGoalStore(db)
	entryStore := store.NewEntryStore(db)
	milestoneStore := store.NewMilestoneStore(db)
	rewardStore := store.NewRewardStore(db)
	pushStore := store.NewPushStore(db)

	awardSvc := award.NewService(db, userStore, templateStore, goalStore, entryStore, milestoneStore, rewardStore, logger.With("component", "award"))

	// Push is optional: without VAPID keys the endpoints stay unmounted and
	// the scheduler never starts.
	var pushSvc *push.Service
	var pushSched *push.Scheduler
	var pushH *handler.PushHandler
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushLogger := logger.With("component", "push")
		pushSvc = push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
		pushSched = push.NewScheduler(pushSvc, pushStore, goalStore, entryStore, templateStore, pushLogger)
		pushH = handler.NewPushHandler(pushStore, pushSvc, pushLogger)
	}

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		templateH:     handler.NewTemplateHandler(templateStore, logger.With("component", "template")),
		goalH:         handler.NewGoalHandler(goalStore, templateStore, logger.With("component", "goal")),
		entryH:        handler.NewEntryHandler(awardSvc, goalStore, entryStore, hub, logger.With("component", "entry")),
		milestoneH:    handler.NewMilestoneHandler(awardSvc, milestoneStore, hub, logger.With("component", "milestone")),
		rewardH:       handler.NewRewardHandler(awardSvc, rewardStore, hub, logger.With("component", "reward")),
		pointsH:       handler.NewPointsHandler(userStore, logger.With("component", "points")),
		pushH:         pushH,
		sessionStore:  sessionStore,
		rateLimiter:   middleware.NewRateLimiter(),
		pushScheduler: pushSched,
		logger:        logger,
	}
}

// PushScheduler returns the streak reminder scheduler, or nil when push is
// not configured.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)

	// Habit template routes
	mux.HandleFunc("POST /api/templates", s.templateH.Create)
	mux.HandleFunc("GET /api/templates", s.templateH.List)
	mux.HandleFunc("GET /api/templates/{id}", s.templateH.Get)
	mux.HandleFunc("PUT /api/templates/{id}", s.templateH.Update)
	mux.HandleFunc("DELETE /api/templates/{id}", s.templateH.Delete)

	// Monthly goal routes
	mux.HandleFunc("POST /api/goals", s.goalH.Create)
	mux.HandleFunc("GET /api/goals", s.goalH.List)
	mux.HandleFunc("GET /api/goals/{id}", s.goalH.Get)
	mux.HandleFunc("PUT /api/goals/{id}", s.goalH.Update)
	mux.HandleFunc("DELETE /api/goals/{id}", s.goalH.Delete)

	// Entry and streak routes
	mux.HandleFunc("POST /api/goals/{id}/entries", s.entryH.Log)
	mux.HandleFunc("GET /api/goals/{id}/entries", s.entryH.ListForGoal)
	mux.HandleFunc("DELETE /api/goals/{id}/entries/{entry_id}", s.entryH.Undo)
	mux.HandleFunc("GET /api/goals/{id}/streak", s.entryH.Streak)

	// Milestone routes
	mux.HandleFunc("POST /api/milestones", s.milestoneH.Create)
	mux.HandleFunc("GET /api/milestones", s.milestoneH.List)
	mux.HandleFunc("POST /api/milestones/{id}/complete", s.milestoneH.Complete)
	mux.HandleFunc("DELETE /api/milestones/{id}", s.milestoneH.Delete)

	// Reward routes
	mux.HandleFunc("POST /api/rewards", s.rewardH.Create)
	mux.HandleFunc("GET /api/rewards", s.rewardH.List)
	mux.HandleFunc("PUT /api/rewards/{id}", s.rewardH.Update)
	mux.HandleFunc("DELETE /api/rewards/{id}", s.rewardH.Delete)
	mux.HandleFunc("POST /api/rewards/{id}/redeem", s.rewardH.Redeem)
	mux.HandleFunc("GET /api/redemptions", s.rewardH.Redemptions)

	// Points balance
	mux.HandleFunc("GET /api/points", s.pointsH.Balance)

	// Push notification routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	}

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
