package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sportsbook/service"
)

// Server holds the HTTP delivery layer and its service dependencies
type Server struct {
	users      service.UserService
	balances   service.BalanceService
	events     service.EventService
	bets       service.BetService
	settlement service.SettlementService
	history    service.BalanceHistoryRepository
	tokens     *TokenIssuer
}

// New creates a server around the given services
func New(
	users service.UserService,
	balances service.BalanceService,
	events service.EventService,
	bets service.BetService,
	settlement service.SettlementService,
	history service.BalanceHistoryRepository,
	tokens *TokenIssuer,
) *Server {
	return &Server{
		users:      users,
		balances:   balances,
		events:     events,
		bets:       bets,
		settlement: settlement,
		history:    history,
		tokens:     tokens,
	}
}

// Router builds the route tree
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondData(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)

			r.Group(func(r chi.Router) {
				r.Use(s.Authenticate)
				r.Get("/profile", s.handleProfile)
				r.Get("/{id}", s.handleGetUser)
				r.Get("/{id}/balance/check", s.handleCheckBalance)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.Authenticate, s.RequireAdmin)
				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUser)
				r.Put("/{id}", s.handleUpdateUser)
				r.Delete("/{id}", s.handleDeleteUser)
				r.Get("/{id}/history", s.handleUserHistory)
				r.Post("/{id}/balance/credit", s.handleCredit)
				r.Post("/{id}/balance/debit", s.handleDebit)
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.handleOpenEvents)
			r.Get("/{id}", s.handleGetEvent)
			r.Get("/{id}/status", s.handleEventStatus)

			r.Group(func(r chi.Router) {
				r.Use(s.Authenticate, s.RequireAdmin)
				r.Get("/all", s.handleAllEvents)
				r.Post("/", s.handleCreateEvent)
				r.Put("/{id}/close", s.handleCloseEvent)
				r.Delete("/{id}", s.handleDeleteEvent)
			})
		})

		r.Route("/bets", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(s.Authenticate, s.RequirePlayer)
				r.Post("/", s.handlePlaceBet)
				r.Get("/my-bets", s.handleMyBets)
				r.Get("/my-stats", s.handleMyStats)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.Authenticate, s.RequireAdmin)
				r.Get("/", s.handleAllBets)
				r.Get("/event/{eventID}", s.handleEventBets)
				r.Post("/event/{eventID}/process", s.handleProcessEvent)
			})
		})
	})

	return r
}
