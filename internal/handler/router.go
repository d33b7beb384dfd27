package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"

	"github.com/Raymond9734/voicemail-drop-backend/internal/auth"
	"github.com/Raymond9734/voicemail-drop-backend/internal/queue"
	"github.com/Raymond9734/voicemail-drop-backend/internal/service"
)

// RouterConfig carries everything the API routes depend on
type RouterConfig struct {
	ServiceName string
	Logger      *otelzap.Logger

	Customers service.CustomerService
	Campaigns service.CampaignService
	Drops     service.DropService

	// DBCheck and Queue feed /health; nil is reported as not configured
	DBCheck func(ctx context.Context) error
	Queue   queue.Client

	// Issuer verifies tokens; nil runs every request as DemoOrganization
	Issuer           *auth.Issuer
	CookieName       string
	DemoOrganization string

	CORSOrigin  string
	MaxFileSize int64
}

// NewRouter builds the API router
func NewRouter(cfg RouterConfig) http.Handler {
	customerHandler := NewCustomerHandler(cfg.Customers, cfg.MaxFileSize, cfg.Logger)
	campaignHandler := NewCampaignHandler(cfg.Campaigns, cfg.Drops, cfg.Logger)
	healthHandler := NewHealthHandler(cfg.DBCheck, cfg.Queue, cfg.Logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(otelchi.Middleware(cfg.ServiceName, otelchi.WithChiRoutes(r)))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSMiddleware(cfg.CORSOrigin))

	r.Get("/health", healthHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Issuer, cfg.CookieName, cfg.DemoOrganization))

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", customerHandler.ListCustomers)
			r.Post("/", customerHandler.CreateCustomer)
			r.Post("/bulk", customerHandler.BulkCreate)
			r.Post("/import", customerHandler.ImportFile)
			r.Get("/{id}", customerHandler.GetCustomer)
			r.Put("/{id}", customerHandler.UpdateCustomer)
			r.Delete("/{id}", customerHandler.DeleteCustomer)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", campaignHandler.ListCampaigns)
			r.Post("/", campaignHandler.CreateCampaign)
			r.Get("/{id}", campaignHandler.GetCampaign)
			r.Put("/{id}", campaignHandler.UpdateCampaign)
			r.Delete("/{id}", campaignHandler.DeleteCampaign)
			r.Post("/{id}/send", campaignHandler.SendCampaign)
			r.Post("/{id}/preview", campaignHandler.PreviewScript)
			r.Get("/{id}/drops", campaignHandler.ListDrops)
			r.Get("/{id}/drops/{dropID}", campaignHandler.GetDrop)
		})
	})

	return r
}
