// jobmate-jobboard-service
//
// Owns the job board's editable settings (search keywords, allowed
// locations) and the whole-word location matcher used to filter offers.
//
//   - Settings live as JSON files under DATA_DIR and fall back to built-in
//     defaults when missing or corrupt.
//   - A cron job reloads them periodically; EVENT_SETTINGS_UPDATED on Redis
//     triggers an immediate reload on every instance.
//   - Search configs are read from PostgreSQL when DATABASE_URL is set.
//   - gRPC health is served on JOBBOARD_GRPC_PORT.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobmate/jobboard-service/internal/config"
	"jobmate/jobboard-service/internal/db"
	"jobmate/jobboard-service/internal/events"
	"jobmate/jobboard-service/internal/grpcserver"
	"jobmate/jobboard-service/internal/httpapi"
	"jobmate/jobboard-service/internal/scheduler"
	"jobmate/jobboard-service/internal/settings"
)

const version = "0.2.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[jobboard-service] Config error: %v", err)
	}
	if err := cfg.Paths.EnsureDataDir(); err != nil {
		log.Fatalf("[jobboard-service] %v", err)
	}
	log.Printf("[jobboard-service] Data directory: %s", cfg.Paths.DataDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Redis (optional) ─────────────────────────────────────────────────────
	var notifier settings.Notifier
	var listen func(func(events.SettingsUpdated)) error
	if cfg.RedisURL != "" {
		log.Println("[jobboard-service] Connecting to Redis…")
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("[jobboard-service] Redis: %v", err)
		}
		defer rdb.Close()
		log.Println("[jobboard-service] Redis connected ✓")

		notifier = events.NewRedisNotifier(rdb)
		listen = func(fn func(events.SettingsUpdated)) error {
			return events.Listen(ctx, events.NewRedisSubscriber(rdb), fn)
		}
	} else {
		log.Println("[jobboard-service] REDIS_URL not set — settings events disabled")
	}

	// ── PostgreSQL (optional) ────────────────────────────────────────────────
	var configs db.Querier
	if cfg.DatabaseURL != "" {
		log.Println("[jobboard-service] Connecting to PostgreSQL…")
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[jobboard-service] PostgreSQL: %v", err)
		}
		defer pool.Close()
		configs = pool
		log.Println("[jobboard-service] PostgreSQL connected ✓")
	} else {
		log.Println("[jobboard-service] DATABASE_URL not set — search config lookups disabled")
	}

	// ── Settings + reload loop ───────────────────────────────────────────────
	store := settings.NewStore(cfg.Paths, notifier)
	snap := settings.NewSnapshot()

	sched := scheduler.New(store, snap, cfg.ReloadIntervalMinutes)
	if err := sched.Start(); err != nil {
		log.Fatalf("[jobboard-service] Scheduler: %v", err)
	}
	defer sched.Stop()

	if listen != nil {
		go func() {
			err := listen(func(ev events.SettingsUpdated) {
				log.Printf("[jobboard-service] %s (%s) received — reloading", ev.Type, ev.Setting)
				sched.Reload()
			})
			if err != nil {
				log.Printf("[jobboard-service] Settings listener stopped: %v", err)
			}
		}()
	}

	// ── gRPC health ─────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatalf("[jobboard-service] gRPC listen: %v", err)
	}
	grpcSrv := grpcserver.New()
	go func() {
		log.Printf("[jobboard-service] gRPC health listening on :%s", cfg.GRPCPort)
		if err := grpcSrv.Serve(lis); err != nil {
			log.Printf("[jobboard-service] gRPC server error: %v", err)
		}
	}()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler(snap))

	h := httpapi.NewHandler(store, snap, configs)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[jobboard-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[jobboard-service] HTTP server error: %v", err)
		}
	}()
	grpcSrv.SetServing(true)

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[jobboard-service] Shutting down…")
	grpcSrv.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[jobboard-service] Shutdown error: %v", err)
	}
	log.Println("[jobboard-service] Stopped.")
}

// healthHandler reports liveness and when settings were last reloaded.
func healthHandler(snap *settings.Snapshot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loadedAt := ""
		if t := snap.LoadedAt(); !t.IsZero() {
			loadedAt = t.UTC().Format(time.RFC3339)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status":           "ok",
			"service":          "jobboard-service",
			"version":          version,
			"settingsLoadedAt": loadedAt,
		})
	}
}
