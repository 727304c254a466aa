package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wardwatch/rent-cli/internal/analysis"
	"github.com/wardwatch/rent-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored listings and statistics over a read-only HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(st),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// newRouter builds the read-only API. Collection stays CLI-driven; the
// server never mutates the store.
func newRouter(st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/listings", func(w http.ResponseWriter, req *http.Request) {
		f, err := filterFromQuery(req)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		records, err := st.GetByConditions(req.Context(), f)
		if err != nil {
			serverError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": len(records), "listings": records})
	})

	r.Get("/api/stats/areas", func(w http.ResponseWriter, req *http.Request) {
		stats, err := st.GetAreaStats(req.Context())
		if err != nil {
			serverError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	})

	r.Get("/api/stats/layouts", func(w http.ResponseWriter, req *http.Request) {
		stats, err := st.GetLayoutStats(req.Context())
		if err != nil {
			serverError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	})

	r.Get("/api/hypothesis", func(w http.ResponseWriter, req *http.Request) {
		records, err := st.GetAll(req.Context())
		if err != nil {
			serverError(w, err)
			return
		}
		result, err := analysis.NewEngine().Verify(records)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	r.Get("/api/runs", func(w http.ResponseWriter, req *http.Request) {
		runs, err := st.ListRuns(req.Context(), 20)
		if err != nil {
			serverError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, runs)
	})

	return r
}

// filterFromQuery maps query parameters onto a store filter; absent
// parameters stay absent.
func filterFromQuery(req *http.Request) (store.Filter, error) {
	var f store.Filter
	q := req.URL.Query()

	if v := q.Get("area"); v != "" {
		f.Area = &v
	}
	if v := q.Get("layout"); v != "" {
		f.Layout = &v
	}
	if v := q.Get("min_rent"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, eris.New("min_rent must be an integer")
		}
		f.MinTotal = &n
	}
	if v := q.Get("max_rent"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, eris.New("max_rent must be an integer")
		}
		f.MaxTotal = &n
	}
	return f, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func serverError(w http.ResponseWriter, err error) {
	zap.L().Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
