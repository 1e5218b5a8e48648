package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sitewise/geoenrich/internal/enrich"
	"github.com/sitewise/geoenrich/internal/geometry"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the enrichment HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv()
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(e),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter assembles the API routes.
func newRouter(e *env) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/v1/sources", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, e.registry.All())
	})

	r.Get("/v1/stats", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, e.engine.Metrics().Snapshot())
	})

	r.Post("/v1/enrich", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Lat         float64  `json:"lat"`
			Lon         float64  `json:"lon"`
			RadiusMiles float64  `json:"radius_miles"`
			Types       []string `json:"types"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		radius := body.RadiusMiles
		if radius <= 0 {
			radius = cfg.Engine.DefaultRadiusMiles
		}

		start := time.Now()
		results, err := e.orch.Enrich(req.Context(), enrich.EnrichRequest{
			Origin:      geometry.Coordinate{Lat: body.Lat, Lon: body.Lon},
			RadiusMiles: radius,
			Types:       body.Types,
		})
		if err != nil {
			zap.L().Error("enrich request failed",
				zap.String("request_id", requestIDFrom(req)),
				zap.Error(err),
			)
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		zap.L().Info("enrich request complete",
			zap.String("request_id", requestIDFrom(req)),
			zap.Duration("elapsed", time.Since(start)),
		)
		respondJSON(w, http.StatusOK, results)
	})

	return r
}

// requestID tags every request with a UUID, echoed in the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		r.Header.Set("X-Request-ID", id)
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func requestIDFrom(r *http.Request) string {
	return r.Header.Get("X-Request-ID")
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
