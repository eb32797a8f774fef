package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rushteam/recserve/artifact"
	"github.com/rushteam/recserve/config"
	"github.com/rushteam/recserve/core"
	"github.com/rushteam/recserve/service"
	"github.com/rushteam/recserve/store"
)

var (
	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recserve",
		Name:      "recommend_requests_total",
		Help:      "Recommend requests by strategy and status.",
	}, []string{"strategy", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recserve",
		Name:      "recommend_duration_seconds",
		Help:      "Recommend latency by strategy.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"strategy"})
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "配置文件路径（空则使用默认配置）")
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", configPath).Msg("load config")
		}
		cfg = loaded
	}

	rec, cleanup, err := buildRecommender(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build recommender")
	}
	defer cleanup()

	if cfg.Serving.WarmUp {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := rec.WarmUp(ctx); err != nil {
			// 预热失败不阻断启动：失败策略首个请求会重新触发装载
			logger.Warn().Err(err).Msg("warm up")
		}
		cancel()
	}

	srv := &http.Server{
		Addr:              cfg.Serving.Addr,
		Handler:           newRouter(rec, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Serving.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("serve")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("stopped")
}

// buildRecommender 按配置组装产物数据源、结果缓存与各策略参数。
func buildRecommender(cfg *config.Config, logger zerolog.Logger) (*service.Recommender, func(), error) {
	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	var source artifact.BlobSource
	switch cfg.Artifacts.Source {
	case "redis":
		rs, err := store.NewRedisStore(cfg.Artifacts.RedisAddr, cfg.Artifacts.RedisDB)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { _ = rs.Close() })
		source = &artifact.StoreSource{Store: rs, Prefix: cfg.Artifacts.RedisPrefix}
	default:
		source = &artifact.FileSource{Dir: cfg.Artifacts.Dir}
	}

	params := make(map[artifact.Kind]service.StrategyParams, len(cfg.Strategies))
	for name, s := range cfg.Strategies {
		kind, _ := artifact.ParseKind(name)
		params[kind] = service.StrategyParams{
			MinScore:   s.MinScore,
			SeenFilter: s.SeenFilter,
			Neighbors:  s.Neighbors,
			Rules:      s.Rules,
		}
	}

	opts := []service.Option{service.WithLogger(logger)}
	if cfg.Serving.DefaultTopK > 0 {
		opts = append(opts, service.WithDefaultTopK(cfg.Serving.DefaultTopK))
	}
	if cfg.Serving.ResultCacheTTL > 0 {
		mem := store.NewMemoryStore()
		closers = append(closers, func() { _ = mem.Close() })
		opts = append(opts, service.WithResultCache(mem, cfg.Serving.ResultCacheTTL))
	}

	cache := artifact.NewCacheWithLoader(&artifact.Loader{Source: source})
	rec, err := service.New(cache, params, opts...)
	if err != nil {
		return nil, cleanup, err
	}
	return rec, cleanup, nil
}

func newRouter(rec *service.Recommender, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/recommend/{strategy}/{user_id}", recommendHandler(rec, logger))
	return r
}

type recommendResponse struct {
	User            string       `json:"user"`
	Strategy        string       `json:"strategy"`
	Recommendations []*core.Item `json:"recommendations"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func recommendHandler(rec *service.Recommender, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		strategy := chi.URLParam(r, "strategy")
		userID := chi.URLParam(r, "user_id")

		topK := 0
		if raw := r.URL.Query().Get("k"); raw != "" {
			k, err := strconv.Atoi(raw)
			if err != nil || k <= 0 {
				writeError(w, http.StatusBadRequest, &core.DomainError{
					Code: core.ErrorCodeInvalidInput, Message: "k must be a positive integer",
				})
				requestTotal.WithLabelValues(strategy, "bad_request").Inc()
				return
			}
			topK = k
		}
		// 缺省剔除已交互物品，显式传 remove_seen=false 才保留
		removeSeen := r.URL.Query().Get("remove_seen") != "false"

		start := time.Now()
		items, err := rec.Recommend(r.Context(), strategy, userID, topK, removeSeen)
		requestDuration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())

		if err != nil {
			status := http.StatusInternalServerError
			label := "error"
			switch {
			case core.IsNotFound(err):
				status = http.StatusNotFound
				label = "not_found"
			case core.IsInvalidInput(err):
				status = http.StatusBadRequest
				label = "bad_request"
			case core.IsArtifactLoadFailed(err):
				status = http.StatusServiceUnavailable
				label = "unavailable"
			}
			logger.Error().Err(err).
				Str("strategy", strategy).
				Str("user_id", userID).
				Msg("recommend failed")
			writeError(w, status, core.GetDomainError(err))
			requestTotal.WithLabelValues(strategy, label).Inc()
			return
		}

		requestTotal.WithLabelValues(strategy, "ok").Inc()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(&recommendResponse{
			User:            userID,
			Strategy:        strategy,
			Recommendations: items,
		})
	}
}

func writeError(w http.ResponseWriter, status int, derr *core.DomainError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := &errorResponse{Error: "internal error"}
	if derr != nil {
		resp.Error = derr.Message
		resp.Code = derr.Code
	}
	_ = json.NewEncoder(w).Encode(resp)
}
