// Package app wires the draw engine to storage, rendering, metrics and
// banner updates.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xtding233/gacha-sim/internal/banner"
	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/logger"
	"github.com/xtding233/gacha-sim/internal/metrics"
	"github.com/xtding233/gacha-sim/internal/render"
	"github.com/xtding233/gacha-sim/internal/store"
	"github.com/xtding233/gacha-sim/internal/token"
)

var (
	ErrInvalidUser     = errors.New("user id must not be empty")
	ErrUpdatesDisabled = errors.New("banner updates are not configured")
	ErrInvalidTrials   = errors.New("trials must be in 1..100000")
)

const maxTrials = 100_000

// StateStore persists users' pity state and draw history.
type StateStore interface {
	LoadState(ctx context.Context, userID string) (gacha.PullerState, bool, error)
	SaveDraw(ctx context.Context, userID, banner string, state gacha.PullerState, results []gacha.Result) error
	History(ctx context.Context, userID string, limit int) ([]store.HistoryEntry, error)
}

// DrawOutcome is the result of one draw request.
type DrawOutcome struct {
	User    string            `json:"user"`
	Banner  string            `json:"banner"`
	Batches [][]gacha.Result  `json:"batches"`
	State   gacha.PullerState `json:"state"`
	Cost    token.Cost        `json:"cost"`
}

// Params are the dependencies of a Service.
type Params struct {
	Banner    *gacha.Banner
	Engine    *gacha.Engine
	Store     StateStore
	Renderer  render.Renderer
	Metrics   *metrics.Manager
	Updater   *banner.Updater // optional
	Token     token.Token
	DrawLimit int
}

// Service runs draw requests for many users against one shared banner.
type Service struct {
	banner    *gacha.Banner
	engine    *gacha.Engine
	store     StateStore
	renderer  render.Renderer
	metrics   *metrics.Manager
	updater   *banner.Updater
	token     token.Token
	drawLimit int

	userLocks sync.Map // user id -> *sync.Mutex

	mu        sync.RWMutex
	listeners map[int]func(DrawOutcome)
	nextID    int
}

// New creates a Service.
func New(p Params) *Service {
	if p.Renderer == nil {
		p.Renderer = render.NewPNGRenderer()
	}
	if p.Metrics == nil {
		p.Metrics = metrics.NewManager()
	}
	if p.Token.Name == "" {
		p.Token = token.Orundum
	}
	s := &Service{
		banner:    p.Banner,
		engine:    p.Engine,
		store:     p.Store,
		renderer:  p.Renderer,
		metrics:   p.Metrics,
		updater:   p.Updater,
		token:     p.Token,
		drawLimit: p.DrawLimit,
		listeners: make(map[int]func(DrawOutcome)),
	}
	s.publishWeights()
	return s
}

// userLock serialises load-draw-save for one user.
func (s *Service) userLock(userID string) *sync.Mutex {
	m, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return m.(*sync.Mutex)
}

// Draw performs count draws for userID, persisting the user's pity state.
// A top-rarity result resets the banner's shared tier weights for every user.
// A failed draw leaves state and shared weights as they were. A failed save
// discards the user's results and state, but the shared weights keep the
// sequence's effects since other users may already have drawn on them.
func (s *Service) Draw(ctx context.Context, userID string, count int) (*DrawOutcome, error) {
	out, err := s.draw(ctx, userID, count)
	missStreak := 0
	if out != nil {
		missStreak = out.State.MissStreak
	}
	s.metrics.RecordRequest(count, missStreak, err)
	return out, err
}

func (s *Service) draw(ctx context.Context, userID string, count int) (*DrawOutcome, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidUser
	}
	if count < 1 || (s.drawLimit > 0 && count > s.drawLimit) {
		return nil, fmt.Errorf("%w: got %d, limit %d", gacha.ErrInvalidDrawCount, count, s.drawLimit)
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	state, ok, err := s.store.LoadState(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if !ok {
		state = gacha.NewPullerState(s.banner)
	}

	name := s.banner.Name()
	batches, err := s.engine.Draw(&state, s.banner, count)
	if err != nil {
		return nil, err
	}

	results := gacha.Flatten(batches)
	if err := s.store.SaveDraw(ctx, userID, name, state, results); err != nil {
		return nil, fmt.Errorf("save draw: %w", err)
	}

	for _, r := range results {
		s.metrics.RecordDraw(r.Tier().String())
	}
	s.publishWeights()

	out := &DrawOutcome{
		User:    userID,
		Banner:  name,
		Batches: batches,
		State:   state,
		Cost:    s.token.CostOf(count),
	}
	logger.Debug("draw",
		zap.String("user", userID),
		zap.Int("count", count),
		zap.Int("miss_streak", state.MissStreak),
		zap.Float64("top_chance", state.TopChance),
	)
	s.notify(*out)
	return out, nil
}

// DrawImage draws and renders the outcome as a PNG.
func (s *Service) DrawImage(ctx context.Context, userID string, count int, relief bool) ([]byte, *DrawOutcome, error) {
	out, err := s.Draw(ctx, userID, count)
	if err != nil {
		return nil, nil, err
	}
	img, err := s.renderer.Render(render.Input{
		Banner:  out.Banner,
		State:   out.State,
		Batches: out.Batches,
		Count:   count,
		Relief:  relief,
	})
	if err != nil {
		return nil, out, fmt.Errorf("render: %w", err)
	}
	return img, out, nil
}

// State returns the user's pity state; unknown users get a fresh state.
func (s *Service) State(ctx context.Context, userID string) (gacha.PullerState, error) {
	if strings.TrimSpace(userID) == "" {
		return gacha.PullerState{}, ErrInvalidUser
	}
	state, ok, err := s.store.LoadState(ctx, userID)
	if err != nil {
		return gacha.PullerState{}, err
	}
	if !ok {
		return gacha.NewPullerState(s.banner), nil
	}
	return state, nil
}

// History returns the user's recent draws.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]store.HistoryEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUser
	}
	return s.store.History(ctx, userID, limit)
}

// Banner returns a snapshot of the banner config.
func (s *Service) Banner() gacha.Config { return s.banner.Snapshot() }

// Weights returns the banner's current shared tier weights.
func (s *Service) Weights() gacha.Weights { return s.banner.Weights() }

// UpdateBanner runs one announcement fetch and apply cycle.
func (s *Service) UpdateBanner(ctx context.Context) (*banner.Announcement, error) {
	if s.updater == nil {
		return nil, ErrUpdatesDisabled
	}
	ann, err := s.updater.Run(ctx)
	switch {
	case err != nil:
		s.metrics.RecordBannerUpdate("error")
	case ann == nil:
		s.metrics.RecordBannerUpdate("unchanged")
	default:
		s.metrics.RecordBannerUpdate("applied")
	}
	return ann, err
}

// RunUpdates calls UpdateBanner every interval until ctx is cancelled.
// Failures are logged and retried on the next tick.
func (s *Service) RunUpdates(ctx context.Context, interval time.Duration) {
	if s.updater == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.UpdateBanner(ctx); err != nil {
				logger.Warn("banner update failed", zap.Error(err))
			}
		}
	}
}

// ReloadBanner re-reads the banner file, e.g. after an edit on disk.
func (s *Service) ReloadBanner(path string) error {
	cfg, err := banner.Load(path)
	if err != nil {
		return err
	}
	if err := s.banner.Reload(cfg); err != nil {
		return err
	}
	s.metrics.RecordBannerReload()
	logger.Info("banner reloaded", zap.String("path", path), zap.String("name", cfg.Name))
	return nil
}

// Simulate runs a Monte Carlo estimate on a private copy of the banner.
func (s *Service) Simulate(goal gacha.TrialGoal, trials, budget int, rng gacha.RandomSource) (gacha.Stats, error) {
	if trials < 1 || trials > maxTrials {
		return gacha.Stats{}, ErrInvalidTrials
	}
	return gacha.RunMonteCarlo(gacha.SimParams{
		Banner: s.banner.Snapshot(),
		Base:   s.banner.BaseWeights(),
		Pity:   s.engine.Pity(),
		Budget: budget,
	}, goal, trials, rng)
}

// Subscribe registers fn for every successful draw. The returned func
// unregisters it.
func (s *Service) Subscribe(fn func(DrawOutcome)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Service) notify(out DrawOutcome) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.listeners {
		fn(out)
	}
}

func (s *Service) publishWeights() {
	w := s.banner.Weights()
	for _, t := range gacha.Tiers {
		s.metrics.SetSharedWeight(t.String(), w[t])
	}
}
