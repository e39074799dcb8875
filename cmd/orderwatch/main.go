package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/insomniafuel/storefront-core/internal/counters"
	"github.com/insomniafuel/storefront-core/internal/orders"
	"github.com/insomniafuel/storefront-core/pkg/backend"
	"github.com/insomniafuel/storefront-core/pkg/config"
	"github.com/insomniafuel/storefront-core/pkg/enums"
	"github.com/insomniafuel/storefront-core/pkg/logger"
	"github.com/insomniafuel/storefront-core/pkg/metrics"
	"github.com/insomniafuel/storefront-core/pkg/types"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// serviceToken satisfies the backend token source with the fixed
// credential the daemon is deployed with.
type serviceToken string

func (t serviceToken) Token(ctx context.Context) (string, error) {
	if t == "" {
		return "", errors.New("watch service token is not configured")
	}
	return string(t), nil
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "orderwatch"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "orderwatch",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	client, err := backend.NewClient(cfg.Backend, serviceToken(cfg.Watch.ServiceToken), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build backend client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	pollMetrics := metrics.NewPollMetrics(registry)

	watcher, err := orders.NewWatcher(orders.WatcherParams{
		Backend: client,
		Metrics: pollMetrics,
		Logger:  logg,
		Alerter: orders.AlerterFunc(func(ctx context.Context, fresh []types.Order) {
			for _, order := range fresh {
				entry := logg.WithFields(ctx, map[string]any{
					"order_id": order.ID,
					"customer": order.CustomerName(),
					"total":    order.Amount().StringFixed(2),
				})
				logg.Info(entry, "new order")
			}
		}),
		Interval: cfg.Poll.OrdersInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build order watcher", err)
		os.Exit(1)
	}

	unread, err := counters.NewPoller(counters.PollerParams{
		Source:   counters.UnreadMessages{Lister: client, Admin: true},
		Metrics:  pollMetrics,
		Logger:   logg,
		Interval: cfg.Poll.UnreadInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build unread poller", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "order watcher stopped unexpectedly", err)
		}
	}()
	go func() {
		if err := unread.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "unread poller stopped unexpectedly", err)
		}
	}()

	server := &http.Server{
		Addr:    cfg.Watch.Addr,
		Handler: newRouter(cfg, logg, watcher, unread, registry),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(context.Background(), "error shutting down ops server", err)
		}
	}()

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": cfg.Watch.Addr,
	})
	logg.Info(startCtx, "starting order watcher")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(startCtx, "ops server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func newRouter(cfg *config.Config, logg *logger.Logger, watcher *orders.Watcher, unread *counters.Poller, registry *prometheus.Registry) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx := logg.WithField(r.Context(), "path", r.URL.Path)
		logg.Info(ctx, "health.check")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "env": cfg.App.Env})
	})

	router.Get("/orders", func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()
		query := orders.Query{
			Search: params.Get("q"),
			Window: orders.Window(params.Get("window")),
			Sort:   orders.Sort(params.Get("sort")),
		}
		if page, err := strconv.Atoi(params.Get("page")); err == nil {
			query.Page = page
		}
		if status, err := enums.ParseOrderStatus(params.Get("status")); err == nil {
			query.Status = &status
		}
		writeJSON(w, http.StatusOK, watcher.Select(query))
	})

	router.Get("/summary", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"orders": watcher.Summary(),
			"unread": unread.Value(),
		})
	})

	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return router
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
