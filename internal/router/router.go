package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"walletflow-service/internal/handler"
	"walletflow-service/internal/middleware"
)

func SetupRoutes(
	r chi.Router,
	h *handler.FlowHandler,
	hub *handler.Hub,
	rdb *redis.Client,
	jwtSecret []byte,
	uploadDir string,
) chi.Router {
	// ---- Global Middleware ----
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.RateLimiter(rdb, 100, time.Minute, 10*time.Minute, "walletflow"))

	// ============================================================
	// Public Endpoints
	// ============================================================
	r.Group(func(pub chi.Router) {
		pub.Get("/walletflow/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
	})

	// ============================================================
	// Authenticated Endpoints
	// ============================================================
	r.Route("/walletflow/svc", func(pr chi.Router) {
		pr.Use(middleware.RequireSession(jwtSecret))

		// ---- Stage event stream ----
		pr.Get("/ws", hub.HandleWebSocket)

		// ---- Money-movement flows ----
		pr.Post("/flows", h.StartFlow)
		pr.Get("/flows/{flowID}", h.GetFlow)
		pr.Put("/flows/{flowID}/intent", h.UpdateIntent)
		pr.Post("/flows/{flowID}/recipient", h.ResolveRecipient)
		pr.Post("/flows/{flowID}/rail", h.PrepareDeposit)
		pr.Post("/flows/{flowID}/review", h.ToConfirm)
		pr.Post("/flows/{flowID}/confirm", h.Confirm)
		pr.Post("/flows/{flowID}/retry", h.Retry)
		pr.Post("/flows/{flowID}/back", h.BackToForm)
		pr.Delete("/flows/{flowID}", h.ExitFlow)

		// ---- Receipt + device surfaces ----
		pr.Get("/flows/{flowID}/receipt", h.ExportReceipt)
		pr.Post("/flows/{flowID}/dial", h.DialUSSD)
		pr.Post("/clipboard", h.CopyText)

		// ---- Balance & history ----
		pr.Get("/balance", h.GetBalance)
		pr.Get("/history", h.ListHistory)
		pr.Get("/receipts/{transactionID}", h.GetArchivedReceipt)

		// ---- Shared artifacts ----
		pr.Handle("/uploads/*", http.StripPrefix("/walletflow/svc/uploads/", http.FileServer(http.Dir(uploadDir))))
	})

	return r
}
