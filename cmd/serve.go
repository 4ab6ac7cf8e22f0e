package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/homelens/housepricer/internal/features"
	"github.com/homelens/housepricer/internal/predict"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the price prediction API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		geocoder, closeClients, err := buildGeocoder(false)
		if err != nil {
			return err
		}
		defer closeClients()

		pipeline := predict.New(geocoder, buildScorer())

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newAPIHandler(pipeline),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newAPIHandler builds the HTTP routes around the prediction pipeline.
func newAPIHandler(pipeline *predict.Pipeline) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /api", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		address := q.Get("address")
		if address == "" {
			httpError(w, http.StatusBadRequest, "address is required")
			return
		}

		newBuild := false
		if raw := q.Get("new_build"); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				httpError(w, http.StatusBadRequest, "new_build must be a boolean")
				return
			}
			newBuild = parsed
		}

		attrs := features.Attributes{
			NewBuild:  newBuild,
			FlatType:  q.Get("flat_type"),
			LeaseType: q.Get("lease_type"),
		}
		if err := attrs.Validate(); err != nil {
			httpError(w, http.StatusBadRequest, eris.ToString(err, false))
			return
		}

		pred, err := pipeline.Predict(r.Context(), address, attrs)
		if err != nil {
			zap.L().Error("prediction failed",
				zap.String("address", address),
				zap.Error(err),
			)
			httpError(w, http.StatusBadGateway, "prediction failed")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(pred)
	})

	return mux
}

func httpError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
