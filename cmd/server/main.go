package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/xtding233/gacha-sim/internal/app"
	"github.com/xtding233/gacha-sim/internal/banner"
	"github.com/xtding233/gacha-sim/internal/config"
	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/logger"
	"github.com/xtding233/gacha-sim/internal/metrics"
	"github.com/xtding233/gacha-sim/internal/rpc"
	"github.com/xtding233/gacha-sim/internal/server"
	"github.com/xtding233/gacha-sim/internal/store"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if err := run(ctx, cfg); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	loader := banner.NewLoader(cfg.BannerPath)
	bannerCfg, err := loader.Load()
	if err != nil {
		return err
	}
	base := gacha.Weights{cfg.WeightTop, cfg.WeightHigh, cfg.WeightMid, cfg.WeightLow}
	b := gacha.NewBanner(bannerCfg, base)

	var rng gacha.RandomSource
	if cfg.Seed != 0 {
		rng = gacha.NewSeededRNG(cfg.Seed)
		logger.Warn("using seeded rng", zap.Uint64("seed", cfg.Seed))
	}
	engine := gacha.NewEngine(rng, gacha.WithPity(gacha.PityPolicy{
		Threshold: cfg.PityThreshold,
		Step:      cfg.PityStep,
		Floor:     cfg.PityFloor,
	}))

	m := metrics.NewManager()

	var updater *banner.Updater
	if cfg.UpdateURL != "" {
		var persister banner.Persister
		if cfg.BannerPath != "" {
			persister = loader
		}
		updater = banner.NewUpdater(b, banner.NewHTTPFetcher(cfg.UpdateURL), persister, cfg.PermanentBanner)
	}

	svc := app.New(app.Params{
		Banner:    b,
		Engine:    engine,
		Store:     st,
		Metrics:   m,
		Updater:   updater,
		DrawLimit: cfg.DrawLimit,
	})

	logger.Info("banner loaded",
		zap.String("name", bannerCfg.Name),
		zap.String("path", cfg.BannerPath),
	)

	go svc.RunUpdates(ctx, cfg.UpdateInterval)
	if cfg.BannerPath != "" && cfg.WatchInterval > 0 {
		w := banner.NewFileWatcher(cfg.BannerPath, cfg.WatchInterval, func(path string) {
			loader.Invalidate()
			if err := svc.ReloadBanner(path); err != nil {
				logger.Warn("banner reload failed", zap.String("path", path), zap.Error(err))
			}
		})
		go w.Run(ctx)
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.New(svc, m).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 2)
	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	var grpcSrv *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return err
		}
		grpcSrv = rpc.NewServer(svc)
		go func() {
			logger.Info("grpc listening", zap.String("addr", cfg.GRPCAddr))
			if err := grpcSrv.Serve(lis); err != nil {
				errc <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errc:
		return err
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	return httpSrv.Shutdown(shutdownCtx)
}
