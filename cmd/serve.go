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

	"github.com/washlytics/siteiq/internal/analysis"
	"github.com/washlytics/siteiq/internal/report"
	"github.com/washlytics/siteiq/internal/store"
	"github.com/washlytics/siteiq/internal/tier"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Store.Migrate(ctx); err != nil {
			return err
		}

		mux := newServeMux(env)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

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

func newServeMux(env *env) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /v1/analyze", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Address       string `json:"address"`
			DepthLevel    int    `json:"depth_level"`
			TierKey       string `json:"tier_key"`
			PayingTierKey string `json:"paying_tier_key"`
			UserID        string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Address == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "address is required"})
			return
		}
		if req.DepthLevel == 0 && req.TierKey == "" {
			req.DepthLevel = 1
		}

		result, err := env.Service.Generate(r.Context(), analysis.GenerateRequest{
			Address:       req.Address,
			DepthLevel:    req.DepthLevel,
			TierKey:       req.TierKey,
			PayingTierKey: req.PayingTierKey,
			UserID:        req.UserID,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result.Preview)
	})

	mux.HandleFunc("GET /v1/quote", func(w http.ResponseWriter, r *http.Request) {
		address := r.URL.Query().Get("address")
		tierKey := r.URL.Query().Get("tier")
		if address == "" || tierKey == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "address and tier are required"})
			return
		}

		q, err := env.Service.QuoteReuse(r.Context(), address, tierKey, r.URL.Query().Get("user"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	})

	mux.HandleFunc("GET /v1/report/{id}", func(w http.ResponseWriter, r *http.Request) {
		pdf, err := env.Service.RenderPDF(r.Context(), r.PathValue("id"), report.UserInfo{})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
		w.WriteHeader(http.StatusOK)
		w.Write(pdf)
	})

	return mux
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case eris.Is(err, analysis.ErrAddressNotFound), eris.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case eris.Is(err, tier.ErrInvalidTier), eris.Is(err, tier.ErrInvalidDepth):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
