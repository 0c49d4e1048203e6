package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dayplan-app/dayplan-api/internal/api"
	apiMiddleware "github.com/dayplan-app/dayplan-api/internal/api/middleware"
	"github.com/dayplan-app/dayplan-api/internal/service/auth"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Deadline on the request context so no store call can block a worker
	// past the configured budget. Expiry surfaces as storage-unavailable
	// through the stores' error mapping.
	if timeout := app.config.Database.QueryTimeout(); timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	authHandler := api.NewAuthHandler(app.provisioningService, app.paymentService, app.logger)
	boardHandler := api.NewBoardHandler(app.boardService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	timeEntryHandler := api.NewTimeEntryHandler(app.trackingService, app.logger)
	scheduleHandler := api.NewScheduleHandler(app.scheduleService, app.logger)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.guard)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/provision", authHandler.Provision)
		r.Post("/auth/sign-in", authHandler.SignIn)

		// Admin endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAdmin)
			r.Post("/admin/registration-keys", authHandler.MintRegistrationKey)
		})

		// Payment refresh authenticates but skips payment gating so unpaid
		// identities can restore their access.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/payment/refresh", authHandler.RefreshPaymentStatus)
		})

		// Read endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireCapability(auth.CapabilityRead))

			r.Get("/boards", boardHandler.ListBoards)
			r.Get("/boards/{id}", boardHandler.GetBoard)
			r.Get("/boards/{id}/tasks", taskHandler.ListTasks)
			r.Get("/tasks/{id}", taskHandler.GetTask)
			r.Get("/tasks/{id}/time", timeEntryHandler.ListTimeEntries)
			r.Get("/boards/{id}/schedule", scheduleHandler.ComposeSchedule)
		})

		// Mutating endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireCapability(auth.CapabilityMutate))

			r.Post("/boards", boardHandler.CreateBoard)
			r.Patch("/boards/{id}", boardHandler.UpdateBoard)
			r.Delete("/boards/{id}", boardHandler.DeleteBoard)

			r.Post("/boards/{id}/tasks", taskHandler.CreateTask)
			r.Patch("/tasks/{id}", taskHandler.UpdateTask)
			r.Put("/tasks/{id}/status", taskHandler.SetTaskStatus)
			r.Post("/tasks/{id}/reopen", taskHandler.ReopenTask)
			r.Delete("/tasks/{id}", taskHandler.DeleteTask)

			r.Post("/tasks/{id}/time/start", timeEntryHandler.StartTimeEntry)
			r.Post("/time-entries/{id}/stop", timeEntryHandler.StopTimeEntry)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
