package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/founderline/outreach-ai-platform/internal/campaign"
	httpmiddleware "github.com/founderline/outreach-ai-platform/internal/http/middleware"
	"github.com/founderline/outreach-ai-platform/internal/leads"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	LeadsHandler       *leads.Handler
	CampaignHandler    *campaign.Handler
	StatsHandler       *campaign.StatsHandler
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Requests per second allowed on the campaign endpoints per IP.
	// Zero disables rate limiting.
	CampaignRateLimit float64
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints.
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		if cfg.LeadsHandler != nil {
			public.Post("/leads", cfg.LeadsHandler.CreateLead)
		}

		if cfg.CampaignHandler != nil {
			public.Route("/api", func(api chi.Router) {
				if cfg.CampaignRateLimit > 0 {
					api.Use(httpmiddleware.RateLimit(cfg.CampaignRateLimit, int(cfg.CampaignRateLimit*4)+1))
				}
				api.Post("/campaign-context", cfg.CampaignHandler.GenerateContext)
				api.Post("/campaigns", cfg.CampaignHandler.Launch)
			})
		}
	})

	// Admin routes, protected by HMAC JWT.
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))

			if cfg.LeadsHandler != nil {
				admin.Get("/leads", cfg.LeadsHandler.ListLeads)
				admin.Get("/leads/{leadID}", cfg.LeadsHandler.GetLead)
			}
			if cfg.CampaignHandler != nil {
				admin.Get("/outreach/jobs/{jobID}", cfg.CampaignHandler.GetJob)
				admin.Get("/outreach/conversations/{conversationID}", cfg.CampaignHandler.GetTranscript)
			}
			if cfg.StatsHandler != nil {
				admin.Method(http.MethodGet, "/outreach/stats", cfg.StatsHandler)
			}
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
