package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/consultport/backend/internal/middleware"
)

func NewRouter(handler *Handler, authMiddleware *middleware.AuthMiddleware, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handler.Register)
			r.Post("/login", handler.Login)
			r.Post("/refresh", handler.RefreshToken)
			r.Post("/logout", handler.Logout)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Get("/me", handler.GetCurrentUser)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Tracker connection routes
			r.Route("/tracker", func(r chi.Router) {
				r.Get("/authorize-url", handler.GetTrackerAuthorizeURL)
				r.Post("/connect", handler.ConnectTracker)
				r.Get("/status", handler.GetTrackerStatus)
				r.Delete("/connect", handler.DisconnectTracker)
			})

			// Time entry routes
			r.Route("/time-entries", func(r chi.Router) {
				r.Get("/", handler.ListTimeEntries)
				r.Post("/", handler.CreateTimeEntry)
				r.Get("/{id}", handler.GetTimeEntry)
				r.Patch("/{id}", handler.UpdateTimeEntry)
				r.Delete("/{id}", handler.DeleteTimeEntry)
				r.Post("/{id}/submit", handler.SubmitTimeEntry)
			})

			// Expense routes
			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", handler.ListExpenses)
				r.Post("/", handler.CreateExpense)
				r.Get("/{id}", handler.GetExpense)
				r.Patch("/{id}", handler.UpdateExpense)
				r.Delete("/{id}", handler.DeleteExpense)
			})

			// Client and project reads are open to every consultant; they
			// need them to log time against the right project.
			r.Get("/clients", handler.ListClients)
			r.Get("/clients/{id}", handler.GetClient)
			r.Get("/projects", handler.ListProjects)
			r.Get("/projects/{id}", handler.GetProject)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.AdminOnly)

				r.Post("/clients", handler.CreateClient)
				r.Patch("/clients/{id}", handler.UpdateClient)
				r.Delete("/clients/{id}", handler.ArchiveClient)

				r.Post("/projects", handler.CreateProject)
				r.Patch("/projects/{id}", handler.UpdateProject)
				r.Delete("/projects/{id}", handler.ArchiveProject)

				r.Route("/approvals", func(r chi.Router) {
					r.Get("/", handler.ListPendingApprovals)
					r.Post("/{id}/approve", handler.ApproveTimeEntry)
					r.Post("/{id}/reject", handler.RejectTimeEntry)
				})

				r.Route("/admin", func(r chi.Router) {
					r.Get("/users", handler.AdminListUsers)
					r.Patch("/users/{id}/role", handler.AdminUpdateUserRole)
					r.Get("/stats", handler.AdminGetStats)
				})
			})
		})
	})

	return r
}
