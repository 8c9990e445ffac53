package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/millemail/prospector/internal/model"
	"github.com/millemail/prospector/internal/store"
)

var servePort int

// webhookEvent is the Smartlead webhook payload subset we act on.
type webhookEvent struct {
	EventType    string `json:"event_type"`
	LeadEmail    string `json:"lead_email"`
	CampaignID   string `json:"campaign_id"`
	LeadCategory string `json:"lead_category"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server for campaign reply events",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		r.Post("/webhook/smartlead", func(w http.ResponseWriter, req *http.Request) {
			var event webhookEvent
			if err := json.NewDecoder(req.Body).Decode(&event); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}
			if event.LeadEmail == "" {
				http.Error(w, `{"error":"lead_email is required"}`, http.StatusBadRequest)
				return
			}

			status, ok := statusForEvent(event)
			if !ok {
				// Unknown event types are acknowledged and ignored so
				// Smartlead does not retry them.
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{"status": "ignored"})
				return
			}

			if err := applyWebhook(req, st, event.LeadEmail, status); err != nil {
				zap.L().Error("webhook update failed",
					zap.String("email", event.LeadEmail),
					zap.String("event", event.EventType),
					zap.Error(err),
				)
				http.Error(w, `{"error":"update failed"}`, http.StatusInternalServerError)
				return
			}

			zap.L().Info("prospect status updated",
				zap.String("email", event.LeadEmail),
				zap.String("status", string(status)),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": string(status)})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting webhook server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// statusForEvent maps a Smartlead event onto the prospect lifecycle.
func statusForEvent(event webhookEvent) (model.Status, bool) {
	switch event.EventType {
	case "EMAIL_REPLY":
		if strings.EqualFold(event.LeadCategory, "interested") {
			return model.StatusInterested, true
		}
		if strings.EqualFold(event.LeadCategory, "not interested") {
			return model.StatusNotInterested, true
		}
		return model.StatusReplied, true
	case "EMAIL_BOUNCE":
		return model.StatusBounced, true
	case "LEAD_CATEGORY_UPDATED":
		switch strings.ToLower(event.LeadCategory) {
		case "interested":
			return model.StatusInterested, true
		case "not interested", "not_interested":
			return model.StatusNotInterested, true
		}
		return "", false
	default:
		return "", false
	}
}

func applyWebhook(req *http.Request, st store.Store, email string, status model.Status) error {
	ctx := req.Context()
	prospect, err := st.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if prospect == nil {
		return eris.Errorf("no prospect with email %s", email)
	}
	return st.UpdateStatus(ctx, prospect.ID, status)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
