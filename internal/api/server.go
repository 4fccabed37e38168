package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"CryptoPilot/internal/model"
	"CryptoPilot/internal/recorder"
)

// Bot is the controller surface the API exposes.
type Bot interface {
	Start(ctx context.Context) error
	Stop()
	Mode() model.Mode
	Status() model.BotStatus
	Portfolio() model.Portfolio
	TradeHistory() []model.Trade
	LatestInsight() *model.Insight
	LatestPrice() *model.PricePoint
	PriceWindow() []model.PricePoint
	Cycles(limit int) ([]recorder.CycleEvent, error)
	Dashboard() model.Dashboard
}

// Server serves the bot's HTTP and websocket API.
type Server struct {
	bot Bot
	jwt *JWTManager // nil disables auth on control routes
	hub *Hub
}

// NewServer builds a server. An empty jwtSecret leaves control routes open.
func NewServer(bot Bot, jwtSecret string, hub *Hub) *Server {
	s := &Server{bot: bot, hub: hub}
	if jwtSecret != "" {
		s.jwt = NewJWTManager(jwtSecret)
	}
	return s
}

// Router returns the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, "healthy")
	})
	if s.hub != nil {
		r.Get("/ws", s.hub.HandleWS)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/bot/status", s.handleStatus)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/portfolio", s.handlePortfolio)
		r.Get("/trades", s.handleTrades)
		r.Get("/insight", s.handleInsight)
		r.Get("/price", s.handlePrice)
		r.Get("/cycles", s.handleCycles)

		r.Group(func(r chi.Router) {
			if s.jwt != nil {
				r.Use(requireToken(s.jwt))
			}
			r.Post("/bot/start", s.handleStart)
			r.Post("/bot/stop", s.handleStop)
		})
	})
	return r
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] API server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		log.Println("[INFO] API server stopped")
		return nil
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.bot.Status())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.bot.Dashboard())
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	p := s.bot.Portfolio()
	resp := map[string]interface{}{
		"mode":      s.bot.Mode(),
		"portfolio": p,
	}
	if price := s.bot.LatestPrice(); price != nil {
		resp["value"] = p.Value(price.Price)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	trades := s.bot.TradeHistory()
	if trades == nil {
		trades = []model.Trade{}
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	ins := s.bot.LatestInsight()
	if ins == nil {
		writeError(w, http.StatusNotFound, "no analysis yet")
		return
	}
	writeJSON(w, http.StatusOK, ins)
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"latest": s.bot.LatestPrice(),
		"window": s.bot.PriceWindow(),
	})
}

func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}
	cycles, err := s.bot.Cycles(limit)
	if err != nil {
		log.Printf("[ERROR] read cycles: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read cycles")
		return
	}
	if cycles == nil {
		cycles = []recorder.CycleEvent{}
	}
	writeJSON(w, http.StatusOK, cycles)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.bot.Start(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.bot.Status())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.bot.Stop()
	writeJSON(w, http.StatusOK, s.bot.Status())
}
