// Package server exposes the draw service over HTTP.
package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xtding233/gacha-sim/internal/app"
	"github.com/xtding233/gacha-sim/internal/banner"
	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/logger"
	"github.com/xtding233/gacha-sim/internal/metrics"
)

type drawResp struct {
	*app.DrawOutcome
	Err string `json:"err,omitempty"`
}

type stateResp struct {
	User  string            `json:"user"`
	State gacha.PullerState `json:"state"`
}

type bannerResp struct {
	Banner  banner.Document `json:"banner"`
	Weights gacha.Weights   `json:"weights"`
}

type updateResp struct {
	Updated bool                 `json:"updated"`
	Notice  *banner.Announcement `json:"announcement,omitempty"`
}

type errResp struct {
	Err string `json:"err"`
}

// drawEvent is pushed to websocket clients after every draw.
type drawEvent struct {
	User       string         `json:"user"`
	Banner     string         `json:"banner"`
	Results    []gacha.Result `json:"results"`
	MissStreak int            `json:"miss_streak"`
	TopChance  float64        `json:"top_chance"`
}

// Server routes HTTP requests to the service.
type Server struct {
	svc     *app.Service
	metrics *metrics.Manager
	hub     *Hub
	mux     *http.ServeMux
}

// New creates the server and subscribes its websocket hub to draws.
func New(svc *app.Service, m *metrics.Manager) *Server {
	s := &Server{svc: svc, metrics: m, hub: NewHub(), mux: http.NewServeMux()}
	svc.Subscribe(func(o app.DrawOutcome) {
		s.hub.Broadcast(drawEvent{
			User:       o.User,
			Banner:     o.Banner,
			Results:    gacha.Flatten(o.Batches),
			MissStreak: o.State.MissStreak,
			TopChance:  o.State.TopChance,
		})
	})

	s.mux.HandleFunc("GET /draw", s.handleDraw)
	s.mux.HandleFunc("GET /draw/image", s.handleDrawImage)
	s.mux.HandleFunc("GET /state", s.handleState)
	s.mux.HandleFunc("GET /history", s.handleHistory)
	s.mux.HandleFunc("GET /banner", s.handleBanner)
	s.mux.HandleFunc("POST /banner/update", s.handleBannerUpdate)
	s.mux.HandleFunc("GET /simulate", s.handleSimulate)
	s.mux.Handle("GET /ws", s.hub)
	if m != nil {
		s.mux.Handle("GET /metrics", m.Handler())
	}
	return s
}

// Handler returns the root handler with request logging and metrics.
func (s *Server) Handler() http.Handler {
	return s.instrument(s.mux)
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

func parseInt(r *http.Request, key string) (int, bool, string) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, false, ""
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return n, true, ""
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, gacha.ErrInvalidDrawCount),
		errors.Is(err, app.ErrInvalidUser),
		errors.Is(err, app.ErrInvalidTrials),
		errors.Is(err, gacha.ErrUnknownGoal):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrUpdatesDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// drawParams reads user and count (default 1).
func drawParams(r *http.Request) (string, int, string) {
	user := r.URL.Query().Get("user")
	count, ok, msg := parseInt(r, "count")
	if msg != "" {
		return "", 0, msg
	}
	if !ok {
		count = 1
	}
	return user, count, ""
}

func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	user, count, msg := drawParams(r)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	out, err := s.svc.Draw(r.Context(), user, count)
	if err != nil {
		writeJSON(w, statusFor(err), drawResp{Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, drawResp{DrawOutcome: out})
}

func (s *Server) handleDrawImage(w http.ResponseWriter, r *http.Request) {
	user, count, msg := drawParams(r)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	relief := r.URL.Query().Get("relief") != "false"
	img, _, err := s.svc.DrawImage(r.Context(), user, count, relief)
	if err != nil {
		writeJSON(w, statusFor(err), errResp{Err: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	_, _ = w.Write(img)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	state, err := s.svc.State(r.Context(), user)
	if err != nil {
		writeJSON(w, statusFor(err), errResp{Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stateResp{User: user, State: state})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, _, msg := parseInt(r, "limit")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	hist, err := s.svc.History(r.Context(), r.URL.Query().Get("user"), limit)
	if err != nil {
		writeJSON(w, statusFor(err), errResp{Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, bannerResp{
		Banner:  banner.FromConfig(s.svc.Banner()),
		Weights: s.svc.Weights(),
	})
}

func (s *Server) handleBannerUpdate(w http.ResponseWriter, r *http.Request) {
	ann, err := s.svc.UpdateBanner(r.Context())
	if err != nil {
		writeJSON(w, statusFor(err), errResp{Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, updateResp{Updated: ann != nil, Notice: ann})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	goal := gacha.TrialGoal(r.URL.Query().Get("goal"))
	if goal == "" {
		goal = gacha.GoalFirstTop
	}
	trials, ok, msg := parseInt(r, "trials")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if !ok {
		trials = 1000
	}
	budget, _, msg := parseInt(r, "budget")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	var rng gacha.RandomSource
	if seed, ok, msg := parseInt(r, "seed"); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	} else if ok {
		rng = gacha.NewSeededRNG(uint64(seed))
	}

	stats, err := s.svc.Simulate(goal, trials, budget, rng)
	if err != nil {
		writeJSON(w, statusFor(err), errResp{Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Hijack is needed by the websocket upgrader.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	r.code = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		// r.Pattern is filled in by the mux; unrouted paths share one label
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		if s.metrics != nil {
			s.metrics.ObserveHTTP(route, strconv.Itoa(rec.code), elapsed.Seconds())
		}
		logger.Debug("http",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Int("status", rec.code),
			zap.Duration("elapsed", elapsed),
		)
	})
}
